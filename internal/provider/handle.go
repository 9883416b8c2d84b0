package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"modelhub/internal/logger"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/openai/openai-go"
	"github.com/sirupsen/logrus"
)

// ModelHandle invokes one model over an OpenAI-compatible wire protocol
type ModelHandle interface {
	Provider() string
	Model() string
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, *Usage, error)
	Stream(ctx context.Context, messages []Message, opts GenerateOptions, onChunk func(string) error) (*Usage, error)
}

// HandleSpec is everything a handle is bound to
type HandleSpec struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
}

// HandleFactory builds a handle from resolved credentials
type HandleFactory func(ctx context.Context, spec HandleSpec) (ModelHandle, error)

// genkitHandle delegates the wire protocol to Genkit's compat_oai plugin
type genkitHandle struct {
	genkit    *genkit.Genkit
	spec      HandleSpec
	modelName string
}

// genkitKey identifies one Genkit instance; handles with the same endpoint
// and key share it
type genkitKey struct {
	provider string
	baseURL  string
	apiKey   string
}

// genkitCache initializes Genkit once per endpoint and key
type genkitCache struct {
	mu        sync.Mutex
	instances map[genkitKey]*genkit.Genkit
	init      func(spec HandleSpec) *genkit.Genkit
}

func newGenkitCache(init func(spec HandleSpec) *genkit.Genkit) *genkitCache {
	return &genkitCache{instances: make(map[genkitKey]*genkit.Genkit), init: init}
}

func (c *genkitCache) get(spec HandleSpec) *genkit.Genkit {
	key := genkitKey{provider: spec.Provider, baseURL: spec.BaseURL, apiKey: spec.APIKey}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.instances[key]; ok {
		return g
	}
	g := c.init(spec)
	c.instances[key] = g
	return g
}

var genkitInstances = newGenkitCache(initGenkit)

func initGenkit(spec HandleSpec) *genkit.Genkit {
	g := genkit.Init(context.Background(),
		genkit.WithPlugins(&compat_oai.OpenAICompatible{
			Provider: strings.ToLower(spec.Provider),
			APIKey:   spec.APIKey,
			BaseURL:  spec.BaseURL,
		}),
	)

	logger.Log.WithFields(logrus.Fields{
		"provider": spec.Provider,
		"base_url": spec.BaseURL,
	}).Info("Initialized Genkit")
	return g
}

// NewGenkitHandle binds spec to the Genkit instance for its endpoint and key
func NewGenkitHandle(ctx context.Context, spec HandleSpec) (ModelHandle, error) {
	return &genkitHandle{
		genkit:    genkitInstances.get(spec),
		spec:      spec,
		modelName: strings.ToLower(spec.Provider) + "/" + spec.Model,
	}, nil
}

func (h *genkitHandle) Provider() string { return h.spec.Provider }
func (h *genkitHandle) Model() string    { return h.spec.Model }

func (h *genkitHandle) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, *Usage, error) {
	resp, err := genkit.Generate(ctx, h.genkit,
		ai.WithMessages(toGenkitMessages(messages)...),
		ai.WithModelName(h.modelName),
		ai.WithConfig(completionParams(opts)),
	)
	if err != nil {
		return "", nil, fmt.Errorf("genkit generation failed: %w", err)
	}
	return resp.Text(), usageOf(resp), nil
}

func (h *genkitHandle) Stream(ctx context.Context, messages []Message, opts GenerateOptions, onChunk func(string) error) (*Usage, error) {
	resp, err := genkit.Generate(ctx, h.genkit,
		ai.WithMessages(toGenkitMessages(messages)...),
		ai.WithModelName(h.modelName),
		ai.WithConfig(completionParams(opts)),
		ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			for _, part := range chunk.Content {
				if part.IsText() && part.Text != "" {
					if err := onChunk(part.Text); err != nil {
						return err
					}
				}
			}
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("genkit streaming failed: %w", err)
	}
	return usageOf(resp), nil
}

func toGenkitMessages(messages []Message) []*ai.Message {
	out := make([]*ai.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, &ai.Message{
			Role:    ai.Role(msg.Role),
			Content: []*ai.Part{ai.NewTextPart(msg.Content)},
		})
	}
	return out
}

func completionParams(opts GenerateOptions) *openai.ChatCompletionNewParams {
	params := &openai.ChatCompletionNewParams{}
	if opts.Temperature != nil {
		params.Temperature = openai.Float(*opts.Temperature)
	}
	if opts.TopP != nil {
		params.TopP = openai.Float(*opts.TopP)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	return params
}

func usageOf(resp *ai.ModelResponse) *Usage {
	if resp == nil || resp.Usage == nil {
		return nil
	}
	return &Usage{
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
}

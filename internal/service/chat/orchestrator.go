package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"modelhub/internal/logger"
	"modelhub/internal/provider"

	"github.com/sirupsen/logrus"
)

var (
	// ErrModelNotFound is returned when selecting a model absent from the current list
	ErrModelNotFound = errors.New("model not found in current model list")
	// ErrNoModelSelected is returned by Send when nothing is selected
	ErrNoModelSelected = errors.New("no model selected")
	// ErrSuperseded is returned when a newer provider switch finished first
	ErrSuperseded = errors.New("provider switch superseded by a newer one")
	// ErrTransport wraps failures reported by the chat transport
	ErrTransport = errors.New("chat transport error")
)

// History records conversation turns; conversation.Service implements it
type History interface {
	Messages(conversationID string) ([]provider.Message, error)
	Append(conversationID, role, content, providerName, model string) error
}

// Options wires an orchestrator to its collaborators
type Options struct {
	Providers    Providers
	Store        SelectionStore
	Transport    Transport
	History      History
	Settings     provider.ProviderSettings
	Env          provider.Env
	Default      Selection
	SystemPrompt string
	Generate     provider.GenerateOptions
}

// Orchestrator holds one chat session's provider/model selection, the current
// model list and the in-flight stream.
type Orchestrator struct {
	providers    Providers
	store        SelectionStore
	transport    Transport
	history      History
	settings     provider.ProviderSettings
	env          provider.Env
	systemPrompt string
	generate     provider.GenerateOptions

	mu         sync.Mutex
	selection  Selection
	models     []provider.ModelInfo
	loading    map[string]int
	generation uint64
	stream     *activeStream
}

type activeStream struct {
	cancel context.CancelFunc
}

// NewOrchestrator loads the persisted selection, falling back to opts.Default
// and then to the first registered provider.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Providers == nil || opts.Store == nil || opts.Transport == nil {
		return nil, fmt.Errorf("orchestrator requires providers, store and transport")
	}

	o := &Orchestrator{
		providers:    opts.Providers,
		store:        opts.Store,
		transport:    opts.Transport,
		history:      opts.History,
		settings:     opts.Settings,
		env:          opts.Env,
		systemPrompt: opts.SystemPrompt,
		generate:     opts.Generate,
		loading:      make(map[string]int),
	}

	sel, found, err := opts.Store.Load()
	if err != nil {
		return nil, err
	}
	if !found || sel.Provider == "" {
		sel = opts.Default
	}

	p, err := o.providers.Get(sel.Provider)
	if err != nil {
		if p = o.providers.Default(); p == nil {
			return nil, fmt.Errorf("no providers registered")
		}
		if sel.Provider != "" {
			logger.Log.WithField("provider", sel.Provider).Warn("Stored provider unknown, using default")
		}
		sel = Selection{}
	}
	sel.Provider = p.Name()

	o.models = p.StaticModels()
	if sel.Model == "" {
		sel.Model = firstModelOf(o.models, p.Name())
	}
	o.selection = sel
	return o, nil
}

// Selection returns the current provider/model choice
func (o *Orchestrator) Selection() Selection {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selection
}

// Models returns a copy of the current model list
func (o *Orchestrator) Models() []provider.ModelInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]provider.ModelInfo, len(o.models))
	copy(out, o.models)
	return out
}

// IsLoading reports whether a model fetch for the provider is in flight
func (o *Orchestrator) IsLoading(providerName string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading[providerName] > 0
}

// SwitchProvider selects a provider, refreshes its model list and persists the
// selection. When the current model is not offered by the new list, the
// provider's first model is selected. A switch that completes after a newer
// one started is discarded with ErrSuperseded.
func (o *Orchestrator) SwitchProvider(ctx context.Context, name string, apiKeys provider.APIKeys) (Selection, error) {
	p, err := o.providers.Get(name)
	if err != nil {
		return o.Selection(), err
	}
	name = p.Name()
	if !o.settings.For(name).IsEnabled() {
		return o.Selection(), fmt.Errorf("%w: %s", provider.ErrProviderDisabled, name)
	}

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.loading[name]++
	o.mu.Unlock()

	dynamic := p.DynamicModels(ctx, provider.ListRequest{
		APIKeys:  apiKeys,
		Settings: o.settings,
		Env:      o.env,
	})
	models := append(p.StaticModels(), dynamic...)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.loading[name]--
	if o.loading[name] <= 0 {
		delete(o.loading, name)
	}

	if gen != o.generation {
		logger.Log.WithField("provider", name).Debug("Discarding stale model list")
		return o.selection, ErrSuperseded
	}

	o.models = models
	next := Selection{Provider: name, Model: o.selection.Model}
	if !hasModel(models, name, next.Model) {
		next.Model = firstModelOf(models, name)
	}

	logger.Log.WithFields(logrus.Fields{
		"provider":    name,
		"model":       next.Model,
		"model_count": len(models),
	}).Info("Switched provider")

	return o.commit(next)
}

// RefreshModels re-fetches the current provider's model list
func (o *Orchestrator) RefreshModels(ctx context.Context, apiKeys provider.APIKeys) (Selection, error) {
	return o.SwitchProvider(ctx, o.Selection().Provider, apiKeys)
}

// SelectModel selects a model from the current list and persists the choice
func (o *Orchestrator) SelectModel(model string) (Selection, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !hasModel(o.models, o.selection.Provider, model) {
		return o.selection, fmt.Errorf("%w: %s", ErrModelNotFound, model)
	}
	return o.commit(Selection{Provider: o.selection.Provider, Model: model})
}

// commit stores and persists sel; callers hold o.mu
func (o *Orchestrator) commit(sel Selection) (Selection, error) {
	o.selection = sel
	if err := o.store.Save(sel); err != nil {
		logger.Log.WithError(err).Error("Error persisting selection")
		return sel, err
	}
	return sel, nil
}

// SendRequest is one user message
type SendRequest struct {
	Message        string
	ConversationID string
	APIKeys        provider.APIKeys
	Temperature    *float64
}

// Send streams a reply to req.Message through the transport. Transport errors
// are reported to the sink as a notification and returned; nothing is retried.
func (o *Orchestrator) Send(ctx context.Context, req SendRequest, sink Sink) error {
	sel := o.Selection()
	if sel.Model == "" {
		return ErrNoModelSelected
	}

	messages, err := o.buildMessages(req)
	if err != nil {
		return err
	}

	streamCtx, stream := o.beginStream(ctx)
	defer o.endStream(stream)

	if err := sink(Event{Type: EventStart, ConversationID: req.ConversationID, Provider: sel.Provider, Model: sel.Model}); err != nil {
		return err
	}

	opts := o.generate
	if req.Temperature != nil {
		opts.Temperature = req.Temperature
	}

	var reply strings.Builder
	usage, err := o.transport.Stream(streamCtx, TransportRequest{
		Provider: sel.Provider,
		Model:    sel.Model,
		Messages: messages,
		APIKeys:  req.APIKeys,
		Options:  opts,
	}, func(chunk string) error {
		reply.WriteString(chunk)
		return sink(Event{Type: EventChunk, Content: chunk})
	})

	if err != nil {
		if streamCtx.Err() != nil && ctx.Err() == nil {
			logger.Log.WithField("model", sel.Model).Info("Chat stream stopped")
			o.record(req.ConversationID, req.Message, reply.String(), sel)
			return sink(Event{Type: EventStopped})
		}

		logger.Log.WithFields(logrus.Fields{
			"provider": sel.Provider,
			"model":    sel.Model,
			"error":    err.Error(),
		}).Error("Chat transport error")

		notifyErr := sink(Event{Type: EventNotification, Notification: &Notification{
			Level:   "error",
			Title:   "There was an error processing your request",
			Message: err.Error(),
		}})
		if notifyErr != nil {
			logger.Log.WithError(notifyErr).Warn("Error delivering notification")
		}
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	o.record(req.ConversationID, req.Message, reply.String(), sel)
	return sink(Event{Type: EventDone, Provider: sel.Provider, Model: sel.Model, Usage: usage})
}

// Stop cancels the in-flight stream, reporting whether there was one
func (o *Orchestrator) Stop() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream == nil {
		return false
	}
	o.stream.cancel()
	return true
}

func (o *Orchestrator) beginStream(ctx context.Context) (context.Context, *activeStream) {
	streamCtx, cancel := context.WithCancel(ctx)
	s := &activeStream{cancel: cancel}

	o.mu.Lock()
	if o.stream != nil {
		o.stream.cancel()
	}
	o.stream = s
	o.mu.Unlock()

	return streamCtx, s
}

func (o *Orchestrator) endStream(s *activeStream) {
	s.cancel()
	o.mu.Lock()
	if o.stream == s {
		o.stream = nil
	}
	o.mu.Unlock()
}

func (o *Orchestrator) buildMessages(req SendRequest) ([]provider.Message, error) {
	var messages []provider.Message
	if o.systemPrompt != "" {
		messages = append(messages, provider.Message{Role: "system", Content: o.systemPrompt})
	}

	if o.history != nil && req.ConversationID != "" {
		past, err := o.history.Messages(req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve conversation history: %w", err)
		}
		messages = append(messages, past...)
	}

	return append(messages, provider.Message{Role: "user", Content: req.Message}), nil
}

// record stores a finished or stopped turn; failed turns leave history untouched
func (o *Orchestrator) record(conversationID, message, reply string, sel Selection) {
	if o.history == nil || conversationID == "" {
		return
	}
	if err := o.history.Append(conversationID, "user", message, "", ""); err != nil {
		logger.Log.WithError(err).Error("Error saving user message")
		return
	}
	if reply == "" {
		return
	}
	if err := o.history.Append(conversationID, "assistant", reply, sel.Provider, sel.Model); err != nil {
		logger.Log.WithError(err).Error("Error saving assistant message")
	}
}

func hasModel(models []provider.ModelInfo, providerName, name string) bool {
	if name == "" {
		return false
	}
	for _, m := range models {
		if m.Name == name && m.Provider == providerName {
			return true
		}
	}
	return false
}

func firstModelOf(models []provider.ModelInfo, providerName string) string {
	for _, m := range models {
		if m.Provider == providerName {
			return m.Name
		}
	}
	return ""
}

package provider

import "fmt"

const OllamaName = "Ollama"

// Ollama lists models from a local Ollama daemon. It has no API-token tier.
type Ollama struct {
	*Base
}

type ollamaModel struct {
	Name    string `json:"name"`
	Details struct {
		ParameterSize string `json:"parameter_size"`
	} `json:"details"`
}

// NewOllama creates the Ollama adapter
func NewOllama(opts ...Option) *Ollama {
	o := &Ollama{}
	o.Base = newBase(OllamaName, KindOllama, Config{
		BaseURLKey:     "OLLAMA_API_BASE_URL",
		DefaultBaseURL: "http://127.0.0.1:11434",
	}, "/api/tags", false, nil, o.decode, opts)

	// Ollama serves the OpenAI-compatible API under /v1 and ignores the key
	o.handlePath = "/v1"
	o.handleKey = "ollama"
	return o
}

func (o *Ollama) decode(body []byte) ([]ModelInfo, error) {
	var records []ollamaModel
	if err := decodeListField(body, "models", &records); err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(records))
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		label := r.Name
		if r.Details.ParameterSize != "" {
			label = fmt.Sprintf("%s (%s)", r.Name, r.Details.ParameterSize)
		}
		models = append(models, ModelInfo{
			Name:            r.Name,
			Label:           label,
			Provider:        o.Name(),
			MaxTokenAllowed: DefaultMaxTokens,
		})
	}
	return models, nil
}

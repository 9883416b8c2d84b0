package provider

const OpenRouterName = "OpenRouter"

// OpenRouter lists models from the OpenRouter aggregation API
type OpenRouter struct {
	*Base
}

type openRouterModel struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}

// NewOpenRouter creates the OpenRouter adapter
func NewOpenRouter(opts ...Option) *OpenRouter {
	r := &OpenRouter{}
	r.Base = newBase(OpenRouterName, KindOpenRouter, Config{
		BaseURLKey:     "OPENROUTER_API_BASE_URL",
		APITokenKey:    "OPENROUTER_API_KEY",
		DefaultBaseURL: "https://openrouter.ai/api/v1",
	}, "/models", true, []ModelInfo{
		{Name: "meta-llama/llama-3.3-8b-instruct:free", Label: "Llama 3.3 8B Instruct (free)", Provider: OpenRouterName, MaxTokenAllowed: 128000},
		{Name: "openai/gpt-4o-mini", Label: "GPT-4o mini", Provider: OpenRouterName, MaxTokenAllowed: 128000},
	}, r.decode, opts)
	return r
}

func (r *OpenRouter) decode(body []byte) ([]ModelInfo, error) {
	var records []openRouterModel
	if err := decodeListField(body, "data", &records); err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(records))
	for _, m := range records {
		if m.ID == "" {
			continue
		}
		label := m.Name
		if label == "" {
			label = m.ID
		}
		maxTokens := m.ContextLength
		if maxTokens <= 0 {
			maxTokens = DefaultMaxTokens
		}
		models = append(models, ModelInfo{
			Name:            m.ID,
			Label:           label,
			Provider:        r.Name(),
			MaxTokenAllowed: maxTokens,
		})
	}
	return models, nil
}

package provider

import (
	"fmt"
	"strings"
)

const FeatherlessName = "Featherless"

// Featherless lists models from the hosted Featherless inference service
type Featherless struct {
	*Base
}

type featherlessModel struct {
	ID      string `json:"id"`
	Details struct {
		Name          string `json:"name"`
		Size          string `json:"size"`
		ContextLength int    `json:"context_length"`
	} `json:"details"`
}

// NewFeatherless creates the Featherless adapter
func NewFeatherless(opts ...Option) *Featherless {
	f := &Featherless{}
	f.Base = newBase(FeatherlessName, KindFeatherless, Config{
		BaseURLKey:     "FEATHERLESS_API_BASE_URL",
		APITokenKey:    "FEATHERLESS_API_KEY",
		DefaultBaseURL: "https://api.featherless.ai/v1",
	}, "/models", true, []ModelInfo{
		{Name: "featherless-ai/Qwerky-72B", Label: "Qwerky 72B", Provider: FeatherlessName, MaxTokenAllowed: 32768},
		{Name: "featherless-ai/Qwerky-QwQ-32B", Label: "Qwerky QwQ 32B", Provider: FeatherlessName, MaxTokenAllowed: 32768},
		{Name: "meta-llama/Meta-Llama-3.1-8B-Instruct", Label: "Llama 3.1 8B Instruct", Provider: FeatherlessName, MaxTokenAllowed: 16384},
	}, f.decode, opts)
	return f
}

func (f *Featherless) decode(body []byte) ([]ModelInfo, error) {
	var records []featherlessModel
	if err := decodeListField(body, "models", &records); err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		maxTokens := r.Details.ContextLength
		if maxTokens <= 0 {
			maxTokens = DefaultMaxTokens
		}
		models = append(models, ModelInfo{
			Name:            r.ID,
			Label:           featherlessLabel(r),
			Provider:        f.Name(),
			MaxTokenAllowed: maxTokens,
		})
	}
	return models, nil
}

// featherlessLabel renders "Name (Size)", falling back to the id's last segment
func featherlessLabel(r featherlessModel) string {
	name := r.Details.Name
	if name == "" {
		name = r.ID[strings.LastIndex(r.ID, "/")+1:]
	}
	if r.Details.Size == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, r.Details.Size)
}

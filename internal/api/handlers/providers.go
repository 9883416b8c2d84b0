package handlers

import (
	"errors"
	"net/http"

	"modelhub/internal/logger"
	"modelhub/internal/provider"

	"github.com/sirupsen/logrus"
)

type ProviderInfo struct {
	Name         string               `json:"name"`
	Kind         provider.Kind        `json:"kind"`
	Enabled      bool                 `json:"enabled"`
	Default      bool                 `json:"default"`
	StaticModels []provider.ModelInfo `json:"staticModels"`
}

type ProvidersResponse struct {
	Providers []ProviderInfo `json:"providers"`
}

type ModelsResponse struct {
	Provider string               `json:"provider"`
	Models   []provider.ModelInfo `json:"models"`
	Status   provider.ListStatus  `json:"status,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// GetProvidersHandler lists the registered providers with their static models
func (h *Handlers) GetProvidersHandler(w http.ResponseWriter, r *http.Request) {
	settings := h.config.Settings()
	defaultName := h.config.AppConfig.Chat.DefaultProvider

	all := h.config.Providers.All()
	infos := make([]ProviderInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, ProviderInfo{
			Name:         p.Name(),
			Kind:         p.Kind(),
			Enabled:      settings.For(p.Name()).IsEnabled(),
			Default:      p.Name() == defaultName,
			StaticModels: p.StaticModels(),
		})
	}

	h.sendJSON(w, http.StatusOK, ProvidersResponse{Providers: infos})
}

// GetProviderModelsHandler returns a provider's static models, followed by its
// live listing when ?dynamic=1. A failed listing still answers 200 with the
// static models and the failure status.
func (h *Handlers) GetProviderModelsHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	p, err := h.config.Providers.Get(name)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "Provider not found", err)
		return
	}

	resp := ModelsResponse{Provider: p.Name(), Models: p.StaticModels()}

	if dynamic := r.URL.Query().Get("dynamic"); dynamic == "1" || dynamic == "true" {
		keys, err := h.apiKeys(r)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "Invalid API keys", err)
			return
		}

		result := p.ListDynamic(r.Context(), provider.ListRequest{
			APIKeys:  keys,
			Settings: h.config.Settings(),
			Env:      h.config.Env(),
		})
		resp.Models = append(resp.Models, result.Models...)
		resp.Status = result.Status
		if result.Err != nil && !errors.Is(result.Err, provider.ErrProviderDisabled) {
			resp.Error = result.Err.Error()
		}

		logger.Log.WithFields(logrus.Fields{
			"provider":    p.Name(),
			"status":      result.Status,
			"model_count": len(resp.Models),
		}).Debug("Listed provider models")
	}

	h.sendJSON(w, http.StatusOK, resp)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"modelhub/internal/logger"
	"modelhub/internal/provider"
	"modelhub/internal/service/chat"

	"github.com/sirupsen/logrus"
)

type SelectProviderRequest struct {
	Provider string `json:"provider"`
}

type SelectModelRequest struct {
	Model string `json:"model"`
}

type SelectionResponse struct {
	Provider string               `json:"provider"`
	Model    string               `json:"model"`
	Models   []provider.ModelInfo `json:"models"`
	Loading  bool                 `json:"loading"`
}

func selectionResponse(sess *chat.Orchestrator) SelectionResponse {
	sel := sess.Selection()
	return SelectionResponse{
		Provider: sel.Provider,
		Model:    sel.Model,
		Models:   sess.Models(),
		Loading:  sess.IsLoading(sel.Provider),
	}
}

// GetSelectionHandler returns the caller's provider/model choice and current model list
func (h *Handlers) GetSelectionHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.sendJSON(w, http.StatusOK, selectionResponse(sess))
}

// SelectProviderHandler switches provider and refreshes its model list
func (h *Handlers) SelectProviderHandler(w http.ResponseWriter, r *http.Request) {
	var req SelectProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.ValidateProviderName(req.Provider); err != nil {
		h.sendError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	keys, err := h.apiKeys(r)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid API keys", err)
		return
	}

	user, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	_, err = sess.SwitchProvider(r.Context(), req.Provider, keys)
	switch {
	case err == nil:
	case errors.Is(err, provider.ErrUnknownProvider):
		h.sendError(w, http.StatusNotFound, "Provider not found", err)
		return
	case errors.Is(err, provider.ErrProviderDisabled):
		h.sendError(w, http.StatusConflict, "Provider disabled", err)
		return
	case errors.Is(err, chat.ErrSuperseded):
		// a newer switch owns the selection; report its state
		h.sendJSON(w, http.StatusConflict, selectionResponse(sess))
		return
	default:
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Error switching provider")
		h.sendError(w, http.StatusInternalServerError, "Error saving selection", err)
		return
	}

	logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "provider": req.Provider}).Info("Provider selected")
	h.sendJSON(w, http.StatusOK, selectionResponse(sess))
}

// SelectModelHandler selects a model from the current list
func (h *Handlers) SelectModelHandler(w http.ResponseWriter, r *http.Request) {
	var req SelectModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.ValidateModelName(req.Model); err != nil {
		h.sendError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	user, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if _, err := sess.SelectModel(req.Model); err != nil {
		if errors.Is(err, chat.ErrModelNotFound) {
			h.sendError(w, http.StatusNotFound, "Model not found", err)
			return
		}
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Error selecting model")
		h.sendError(w, http.StatusInternalServerError, "Error saving selection", err)
		return
	}

	h.sendJSON(w, http.StatusOK, selectionResponse(sess))
}

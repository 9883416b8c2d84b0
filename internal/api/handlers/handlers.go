package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"modelhub/internal/app"
	"modelhub/internal/auth"
	"modelhub/internal/provider"
	"modelhub/internal/repository/db"
	"modelhub/internal/service/chat"
	"modelhub/pkg/validation"
)

// ProviderKeysHeader carries per-call API keys as a JSON object keyed by provider name
const ProviderKeysHeader = "X-Provider-Keys"

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handlers serves the provider, selection, chat and conversation endpoints
type Handlers struct {
	config    *app.Config
	validator *validation.ChatRequestValidator
}

// NewHandlers creates Handlers over the application dependencies
func NewHandlers(config *app.Config) *Handlers {
	return &Handlers{
		config:    config,
		validator: validation.NewChatRequestValidator(),
	}
}

// sendError sends a standardized JSON error response
func (h *Handlers) sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

func (h *Handlers) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// getUserFromContext extracts and validates user from request context
func (h *Handlers) getUserFromContext(r *http.Request) (*db.User, error) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		return nil, fmt.Errorf("no authenticated user")
	}
	return h.config.DB.GetUserByUsername(username)
}

// session resolves the caller's orchestrator, writing the error response itself
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*db.User, *chat.Orchestrator, bool) {
	user, err := h.getUserFromContext(r)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "User not found", err)
		return nil, nil, false
	}

	sess, err := h.config.Sessions.Session(user.ID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Error loading chat session", err)
		return nil, nil, false
	}
	return user, sess, true
}

// apiKeys parses the per-call key overrides; an absent header means none
func (h *Handlers) apiKeys(r *http.Request) (provider.APIKeys, error) {
	raw := r.Header.Get(ProviderKeysHeader)
	if raw == "" {
		return nil, nil
	}

	var keys provider.APIKeys
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("invalid %s header: %w", ProviderKeysHeader, err)
	}
	if err := h.validator.ValidateAPIKeys(keys); err != nil {
		return nil, err
	}
	return keys, nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"modelhub/internal/logger"
	"modelhub/internal/repository/db"
	"modelhub/internal/service/chat"
	conversationService "modelhub/internal/service/conversation"

	"github.com/sirupsen/logrus"
)

type ChatRequest struct {
	Message        string   `json:"message"`
	ConversationID string   `json:"conversation_id,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// ChatStreamHandler is the SSE endpoint for streaming chat responses. Each
// event is a "data:" frame holding a JSON chat.Event; transport failures are
// additionally tagged "event: notification". The stream ends with [DONE].
func (h *Handlers) ChatStreamHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateChatRequest(req.Message, req.Temperature); err != nil {
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

	if sess.Selection().Model == "" {
		h.sendError(w, http.StatusBadRequest, "No model selected", chat.ErrNoModelSelected)
		return
	}

	conversationID, ok := h.resolveConversation(w, user.ID, req)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.sendError(w, http.StatusInternalServerError, "Streaming not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := func(event chat.Event) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if event.Type == chat.EventNotification {
			fmt.Fprint(w, "event: notification\n")
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err = sess.Send(r.Context(), chat.SendRequest{
		Message:        req.Message,
		ConversationID: conversationID,
		APIKeys:        keys,
		Temperature:    req.Temperature,
	}, sink)
	if err != nil && !errors.Is(err, chat.ErrTransport) {
		// transport errors already reached the client as a notification
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Chat stream failed")
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (h *Handlers) resolveConversation(w http.ResponseWriter, userID string, req ChatRequest) (string, bool) {
	if req.ConversationID == "" {
		conv, err := h.config.Conversations.Create(userID, req.Message)
		if err != nil {
			logger.Log.WithError(err).Error("Error creating conversation")
			h.sendError(w, http.StatusInternalServerError, "Error creating conversation", err)
			return "", false
		}
		return conv.ID, true
	}

	if _, err := h.config.Conversations.Authorize(req.ConversationID, userID); err != nil {
		h.sendConversationError(w, err)
		return "", false
	}
	return req.ConversationID, true
}

// StopHandler cancels the caller's in-flight stream
func (h *Handlers) StopHandler(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	stopped := sess.Stop()
	logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "stopped": stopped}).Info("Stop requested")
	h.sendJSON(w, http.StatusOK, StopResponse{Stopped: stopped})
}

func (h *Handlers) sendConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversationService.ErrUnauthorized):
		h.sendError(w, http.StatusForbidden, "Unauthorized", err)
	case errors.Is(err, db.ErrNotFound):
		h.sendError(w, http.StatusNotFound, "Conversation not found", err)
	default:
		logger.Log.WithError(err).Error("Error from conversation service")
		h.sendError(w, http.StatusInternalServerError, "Error accessing conversation", err)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"modelhub/internal/logger"
	"modelhub/internal/repository/db"
	"modelhub/internal/service/chat"
	conversationService "modelhub/internal/service/conversation"
	"modelhub/internal/service/summary"

	"github.com/sirupsen/logrus"
)

// maxImportBytes bounds an uploaded export document
const maxImportBytes = 10 << 20

type ConversationsResponse struct {
	Conversations []conversationService.ConversationInfo `json:"conversations"`
}

type ImportResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type SummarizeRequest struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// GetConversationsHandler returns all conversations for the authenticated user
func (h *Handlers) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserFromContext(r)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	conversations, err := h.config.Conversations.GetUserConversations(user.ID)
	if err != nil {
		logger.Log.WithError(err).Error("Error from conversation service")
		h.sendError(w, http.StatusInternalServerError, "Error retrieving conversations", err)
		return
	}

	h.sendJSON(w, http.StatusOK, ConversationsResponse{Conversations: conversations})
}

// ExportConversationHandler downloads a conversation as a JSON document
func (h *Handlers) ExportConversationHandler(w http.ResponseWriter, r *http.Request) {
	convID := r.PathValue("id")

	user, err := h.getUserFromContext(r)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	data, err := h.config.Conversations.Export(convID, user.ID)
	if err != nil {
		h.sendConversationError(w, err)
		return
	}

	logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "conversation_id": convID}).Info("Exported conversation")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "conversation-"+convID+".json"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportConversationHandler creates a conversation from an uploaded export document
func (h *Handlers) ImportConversationHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserFromContext(r)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "User not found", err)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.sendError(w, http.StatusRequestEntityTooLarge, "Export document too large", err)
		return
	}

	conv, err := h.config.Conversations.Import(user.ID, payload)
	if err != nil {
		if errors.Is(err, conversationService.ErrInvalidExport) {
			h.sendError(w, http.StatusBadRequest, "Invalid export document", err)
			return
		}
		logger.Log.WithError(err).Error("Error importing conversation")
		h.sendError(w, http.StatusInternalServerError, "Error importing conversation", err)
		return
	}

	h.sendJSON(w, http.StatusCreated, ImportResponse{ID: conv.ID, Title: conv.Title})
}

// SummarizeConversationHandler summarizes a conversation with the caller's selected model
func (h *Handlers) SummarizeConversationHandler(w http.ResponseWriter, r *http.Request) {
	convID := r.PathValue("id")

	var req SummarizeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.sendError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if err := h.validator.ValidateTemperature(req.Temperature); err != nil {
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
	sel := sess.Selection()

	resp, err := h.config.Summaries.SummarizeConversation(r.Context(), summary.SummarizeRequest{
		ConversationID: convID,
		UserID:         user.ID,
		Provider:       sel.Provider,
		Model:          sel.Model,
		APIKeys:        keys,
		Temperature:    req.Temperature,
	})
	switch {
	case err == nil:
		h.sendJSON(w, http.StatusOK, resp)
	case errors.Is(err, chat.ErrNoModelSelected):
		h.sendError(w, http.StatusBadRequest, "No model selected", err)
	case errors.Is(err, summary.ErrEmptyConversation):
		h.sendError(w, http.StatusBadRequest, "Nothing to summarize", err)
	case errors.Is(err, conversationService.ErrUnauthorized), errors.Is(err, db.ErrNotFound):
		h.sendConversationError(w, err)
	default:
		logger.Log.WithError(err).WithField("conversation_id", convID).Error("Error summarizing conversation")
		h.sendError(w, http.StatusBadGateway, "Error generating summary", err)
	}
}

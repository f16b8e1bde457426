package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Rrens/aura-chat/internal/api/middleware"
	"github.com/Rrens/aura-chat/internal/api/response"
	"github.com/Rrens/aura-chat/internal/domain"
	"github.com/Rrens/aura-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ChatHandler handles chat session endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type createSessionRequest struct {
	UserID string `json:"userId"`
}

type sendMessageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type sessionResponse struct {
	SessionID string           `json:"sessionId"`
	Messages  []domain.Message `json:"messages"`
}

// CreateSession handles POST /api/chat/session
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input createSessionRequest
	if !decodeOptional(w, r, &input) {
		return
	}

	userID := resolveUserID(r, input.UserID)

	sessionID, err := h.chatService.CreateSession(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			response.BadRequest(w, "User ID is required.")
		case errors.Is(err, domain.ErrNotFound):
			response.NotFound(w, "User not found.")
		default:
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to create chat session")
			response.InternalError(w, "Server error while creating chat session.")
		}
		return
	}

	response.Created(w, map[string]string{
		"message":   "New chat session created.",
		"sessionId": sessionID,
	})
}

// SendMessage handles POST /api/chat/{sessionId}/message
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	var input sendMessageRequest
	if !decodeOptional(w, r, &input) {
		return
	}

	userID := resolveUserID(r, input.UserID)

	reply, err := h.chatService.SendMessage(r.Context(), sessionID, userID, input.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnavailable):
			response.ServiceUnavailable(w, "AI service is not configured. Please contact administrator.")
		case errors.Is(err, domain.ErrInvalidInput):
			response.BadRequest(w, "User ID and message are required.")
		case errors.Is(err, domain.ErrNotFound):
			response.NotFound(w, "Chat session not found or you are not authorized.")
		default:
			log.Ctx(r.Context()).Error().Err(err).Str("session_id", sessionID).Msg("Failed to send message")
			response.InternalError(w, "Server error while sending message.")
		}
		return
	}

	response.OK(w, map[string]string{"response": reply})
}

// GetSession handles GET /api/chat/{sessionId}. Anonymous callers name
// themselves with the userId query parameter.
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	userID := resolveUserID(r, r.URL.Query().Get("userId"))

	session, err := h.chatService.GetSession(r.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			response.BadRequest(w, "User ID is required.")
		case errors.Is(err, domain.ErrNotFound):
			response.NotFound(w, "Chat session not found or you are not authorized.")
		default:
			log.Ctx(r.Context()).Error().Err(err).Str("session_id", sessionID).Msg("Failed to load chat session")
			response.InternalError(w, "Server error while fetching chat session.")
		}
		return
	}

	response.OK(w, sessionResponse{
		SessionID: session.SessionID,
		Messages:  session.Messages,
	})
}

// resolveUserID prefers the authenticated identity over the client-supplied one
func resolveUserID(r *http.Request, fallback string) string {
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		return userID
	}
	return fallback
}

// decodeOptional decodes a JSON body into v. An empty body leaves v zero so
// the service can report the missing fields itself.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "invalid request body")
		return false
	}
	return true
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/digi0/ACE/internal/middleware"
	"github.com/digi0/ACE/internal/models"
	"github.com/digi0/ACE/internal/pkg/response"
	"github.com/digi0/ACE/internal/service"
)

// ChatHandler handles chat-related HTTP requests.
type ChatHandler struct {
	chats    service.ChatService
	validate *validator.Validate
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chats service.ChatService) *ChatHandler {
	return &ChatHandler{
		chats:    chats,
		validate: newValidator(),
	}
}

// SendRequest is the HTTP request body for POST /api/chat/send. An empty
// ChatID starts a new chat.
type SendRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message" validate:"required"`
}

// SendResponse carries the chat id and the structured answer.
type SendResponse struct {
	ChatID   string                     `json:"chat_id"`
	Response *models.StructuredResponse `json:"response"`
}

// ChatSummary is one entry of GET /api/chats.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Send handles POST /api/chat/send
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req SendRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	chatID, resp, err := h.chats.SendMessage(r.Context(), user, req.ChatID, req.Message)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, SendResponse{ChatID: chatID, Response: resp})
}

// List handles GET /api/chats
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	chats, err := h.chats.ListChats(r.Context(), user.ID)
	if err != nil {
		response.Error(w, err)
		return
	}

	out := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		out = append(out, ChatSummary{
			ID:           c.ID,
			Title:        c.Title,
			MessageCount: len(c.Messages),
			CreatedAt:    c.CreatedAt.UTC(),
			UpdatedAt:    c.UpdatedAt.UTC(),
		})
	}
	response.OK(w, out)
}

// Get handles GET /api/chat/{id}
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	chat, err := h.chats.GetChat(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, chat)
}

// Delete handles DELETE /api/chat/{id}
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.chats.DeleteChat(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "deleted"})
}

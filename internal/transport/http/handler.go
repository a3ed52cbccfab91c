package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/peertalk/chat-service/internal/domain"
	"github.com/peertalk/chat-service/internal/postgres"
	"github.com/peertalk/chat-service/internal/service"
	httpmw "github.com/peertalk/chat-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	convSvc    *service.ConversationService
	messageSvc *service.MessageService
	unreadSvc  *service.UnreadService
}

func NewHandler(conv *service.ConversationService, message *service.MessageService, unread *service.UnreadService) *Handler {
	return &Handler{
		convSvc:    conv,
		messageSvc: message,
		unreadSvc:  unread,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrBadReceiver),
		errors.Is(err, domain.ErrSelfConversation),
		errors.Is(err, postgres.ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrIdentityNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("handler."+op, slog.Any("err", err))
		writeJSON(w, status, ErrorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// POST /conversations
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.CounterpartID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "counterpart_id is required"})
		return
	}

	conv, err := h.convSvc.Create(r.Context(), ident.TenantID, ident.ID, req.CounterpartID)
	if err != nil {
		h.writeError(w, "CreateConversation", err)
		return
	}

	writeJSON(w, http.StatusCreated, toConversationItem(conv))
}

// GET /conversations/{id}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	conv, err := h.convSvc.Get(r.Context(), id, ident.ID)
	if err != nil {
		h.writeError(w, "GetConversation", err)
		return
	}

	writeJSON(w, http.StatusOK, toConversationItem(conv))
}

// DELETE /conversations/{id}
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.convSvc.Delete(r.Context(), id, ident.ID); err != nil {
		h.writeError(w, "DeleteConversation", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /conversations/{id}/messages?after=&limit=
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, next, err := h.messageSvc.History(r.Context(), id, ident.ID, after, limit)
	if err != nil {
		h.writeError(w, "GetMessages", err)
		return
	}
	if items == nil {
		items = []domain.Message{}
	}

	writeJSON(w, http.StatusOK, MessagesResponse{Items: items, NextCursor: next})
}

// GET /unread_count
//
// REST fallback for clients without a live websocket; returns exactly
// what the push would carry.
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())

	n, err := h.unreadSvc.Count(r.Context(), ident.ID)
	if err != nil {
		h.writeError(w, "GetUnreadCount", err)
		return
	}

	writeJSON(w, http.StatusOK, UnreadCountResponse{Count: n})
}

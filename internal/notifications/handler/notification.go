package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"curbside/internal/notifications/service"
	apperrors "curbside/pkg/errors"
	httputil "curbside/pkg/http"
	"curbside/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

type unreadResponse struct {
	UserID string `json:"user_id"`
	Unread int64  `json:"unread"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	userID := query.Get("user_id")
	if userID == "" {
		h.writeError(w, "List", apperrors.InvalidInput("'user_id' query parameter is required"))
		return
	}

	limit, offset, err := paginationParams(query.Get("limit"), query.Get("offset"))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	notifications, total, err := h.service.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, notifications, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, "Unread", apperrors.InvalidInput("'user_id' query parameter is required"))
		return
	}

	count, err := h.service.CountUnread(r.Context(), userID)
	if err != nil {
		h.writeError(w, "Unread", err)
		return
	}

	if err := httputil.WriteSuccess(w, unreadResponse{UserID: userID, Unread: count}); err != nil {
		h.log.Error("failed to write success response", "handler", "Unread", "error", err)
	}
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, "MarkRead", apperrors.InvalidInput("'user_id' query parameter is required"))
		return
	}

	if err := h.service.MarkRead(r.Context(), id, userID); err != nil {
		h.writeError(w, "MarkRead", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, "MarkAllRead", apperrors.InvalidInput("'user_id' query parameter is required"))
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		h.writeError(w, "MarkAllRead", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func paginationParams(limitStr, offsetStr string) (int, int64, error) {
	limit := 0
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid limit parameter: %s", limitStr))
		}
	}

	var offset int64
	if offsetStr != "" {
		var err error
		offset, err = strconv.ParseInt(offsetStr, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput(fmt.Sprintf("invalid offset parameter: %s", offsetStr))
		}
	}

	return limit, offset, nil
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.List)
	router.GET("/api/v1/notifications/unread", h.Unread)
	router.POST("/api/v1/notifications/id/:id/read", h.MarkRead)
	router.POST("/api/v1/notifications/read-all", h.MarkAllRead)
}

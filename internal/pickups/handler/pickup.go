package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"curbside/internal/pickups/service"
	apperrors "curbside/pkg/errors"
	httputil "curbside/pkg/http"
	"curbside/pkg/logger"
	"curbside/pkg/model"
	"curbside/pkg/slots"

	"github.com/julienschmidt/httprouter"
)

type PickupHandler struct {
	service service.BookingService
	window  *slots.Window
	log     *logger.Logger
}

func NewPickupHandler(service service.BookingService, window *slots.Window, log *logger.Logger) *PickupHandler {
	return &PickupHandler{
		service: service,
		window:  window,
		log:     log,
	}
}

type rescheduleRequest struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason,omitempty"`
}

type slotsResponse struct {
	Date      string   `json:"date"`
	Booked    []string `json:"booked"`
	Available []string `json:"available"`
}

func (h *PickupHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.PickupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Submit(r.Context(), &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, req); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *PickupHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.writeError(w, "Slots", apperrors.InvalidInput("'date' query parameter is required"))
		return
	}

	booked, err := h.service.ListBookedSlots(r.Context(), date)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}

	resp := slotsResponse{
		Date:      date,
		Booked:    booked,
		Available: h.window.Available(booked),
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "error", err)
	}
}

func (h *PickupHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	req, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, req); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *PickupHandler) ListByUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	userID := query.Get("user_id")
	if userID == "" {
		h.writeError(w, "ListByUser", apperrors.InvalidInput("'user_id' query parameter is required"))
		return
	}

	limit, offset, err := paginationParams(query.Get("limit"), query.Get("offset"))
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	requests, total, err := h.service.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	if err := httputil.WritePaginated(w, requests, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByUser", "error", err)
	}
}

func (h *PickupHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var body rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "Reschedule", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Reschedule(r.Context(), id, body.Date, body.Time, body.Reason); err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PickupHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var meta model.CancelMeta
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		h.writeError(w, "Cancel", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Cancel(r.Context(), id, meta); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PickupHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
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

func (h *PickupHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/pickups", h.Create)
	router.GET("/api/v1/pickups", h.ListByUser)
	router.GET("/api/v1/pickups/slots", h.Slots)
	router.GET("/api/v1/pickups/id/:id", h.GetByID)
	router.POST("/api/v1/pickups/id/:id/reschedule", h.Reschedule)
	router.POST("/api/v1/pickups/id/:id/cancel", h.Cancel)
}

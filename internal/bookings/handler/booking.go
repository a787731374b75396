package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"padelhub/internal/bookings/service"
	"padelhub/internal/settings"
	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
)

// SettingsSource returns the current venue settings.
type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

type BookingHandler struct {
	service  service.BookingService
	settings SettingsSource
	log      *logger.Logger
}

func NewBookingHandler(service service.BookingService, settings SettingsSource, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		settings: settings,
		log:      log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "Create")
		return
	}
	req.UserID = userID

	st, err := h.settings.Get(r.Context())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	bookings, err := h.service.Create(r.Context(), &req, st)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, bookings); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	bookings, err := h.service.ListByCourtAndDate(r.Context(), query.Get("court_id"), query.Get("date"))
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	bookings, totalCount, err := h.service.ListByUser(r.Context(), ps.ByName("user_id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByUser", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	// The reason is optional, so is the body.
	var req model.BookingCancel
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeBadBody(w, "Cancel")
			return
		}
	}

	st, err := h.settings.Get(r.Context())
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), userID, &req, st)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "UpdateStatus")
		return
	}

	st, err := h.settings.Get(r.Context())
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &req, st)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	st, err := h.settings.Get(r.Context())
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	result, err := h.service.Availability(r.Context(), ps.ByName("id"), r.URL.Query().Get("date"), st)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	st, err := h.settings.Get(r.Context())
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	query := r.URL.Query()
	quote, err := h.service.Quote(r.Context(), ps.ByName("id"), query.Get("date"), httputil.SplitCSV(query.Get("slots")), st)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/search", h.Search)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.PATCH("/api/v1/bookings/id/:id/status", h.UpdateStatus)
	router.GET("/api/v1/bookings/user/:user_id", h.ListByUser)
	router.GET("/api/v1/courts/id/:id/availability", h.Availability)
	router.GET("/api/v1/courts/id/:id/quote", h.Quote)
}

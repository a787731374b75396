package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"padelhub/internal/rateschedules/service"
	apperrors "padelhub/pkg/errors"
	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
)

type RateScheduleHandler struct {
	service service.RateScheduleService
	log     *logger.Logger
}

func NewRateScheduleHandler(service service.RateScheduleService, log *logger.Logger) *RateScheduleHandler {
	return &RateScheduleHandler{
		service: service,
		log:     log,
	}
}

func (h *RateScheduleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sc := model.RateSchedule{IsActive: true}
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	sc.ID = ""

	if err := h.service.Create(r.Context(), &sc); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, sc); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RateScheduleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sc, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RateScheduleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.RateScheduleUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	sc, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RateScheduleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RateScheduleHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	courtID := strings.TrimSpace(query.Get("court_id"))

	if courtID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'court_id' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Search", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	activeOnly := false
	if v := query.Get("active"); v != "" {
		var err error
		if activeOnly, err = strconv.ParseBool(v); err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid active parameter: "+v)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	results, err := h.service.ListByCourt(r.Context(), courtID, activeOnly)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RateScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rate-schedules", h.Create)
	router.GET("/api/v1/rate-schedules/search", h.Search)
	router.GET("/api/v1/rate-schedules/id/:id", h.GetByID)
	router.PATCH("/api/v1/rate-schedules/id/:id", h.Update)
	router.DELETE("/api/v1/rate-schedules/id/:id", h.Delete)
}

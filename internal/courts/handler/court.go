package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"padelhub/internal/courts/service"
	apperrors "padelhub/pkg/errors"
	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
)

type CourtHandler struct {
	service service.CourtService
	log     *logger.Logger
}

func NewCourtHandler(service service.CourtService, log *logger.Logger) *CourtHandler {
	return &CourtHandler{
		service: service,
		log:     log,
	}
}

func (h *CourtHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// New courts are bookable unless the request says otherwise.
	court := model.Court{IsActive: true}
	if err := json.NewDecoder(r.Body).Decode(&court); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	court.ID = ""

	if err := h.service.Create(r.Context(), &court); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, court); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *CourtHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	court, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, court); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CourtHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	activeOnly := false
	if v := r.URL.Query().Get("active"); v != "" {
		activeOnly, err = strconv.ParseBool(v)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid active parameter: "+v)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	courts, totalCount, err := h.service.GetAll(r.Context(), limit, offset, activeOnly)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, courts, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *CourtHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.CourtUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	court, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, court); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CourtHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/courts", h.Create)
	router.GET("/api/v1/courts", h.GetAll)
	router.GET("/api/v1/courts/id/:id", h.GetByID)
	router.PATCH("/api/v1/courts/id/:id", h.Update)
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homebase/internal/apperr"
	"homebase/internal/model"
)

const maxUpcomingDays = 366

func (h *Handler) ListMaintenance(c *gin.Context) {
	var f model.ListFilter
	if err := bindQuery(c, &f); err != nil {
		h.fail(c, err)
		return
	}
	tasks, err := h.store.ListMaintenance(c.Request.Context(), f.ApplianceID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, tasks, "Maintenance tasks retrieved successfully")
}

// GetUpcomingMaintenance handles GET /api/maintenance/upcoming?days=N.
func (h *Handler) GetUpcomingMaintenance(c *gin.Context) {
	days := model.DefaultUpcomingDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxUpcomingDays {
			h.fail(c, &apperr.ValidationError{Fields: []apperr.FieldError{{
				Field:   "days",
				Message: "must be a whole number between 0 and " + strconv.Itoa(maxUpcomingDays),
			}}})
			return
		}
		days = n
	}
	tasks, err := h.store.UpcomingMaintenance(c.Request.Context(), h.today(), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, tasks, "Upcoming maintenance retrieved successfully")
}

func (h *Handler) GetMaintenance(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.store.GetMaintenance(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, t, "Maintenance task retrieved successfully")
}

// CreateMaintenance handles POST /api/maintenance. The appliance must exist.
func (h *Handler) CreateMaintenance(c *gin.Context) {
	var in model.MaintenanceInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	t := in.Task()
	if err := h.store.CreateMaintenance(c.Request.Context(), &t); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, t, "Maintenance task created successfully")
}

func (h *Handler) UpdateMaintenance(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var p model.MaintenancePatch
	if err := bindJSON(c, &p); err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.store.UpdateMaintenance(c.Request.Context(), id, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, t, "Maintenance task updated successfully")
}

func (h *Handler) DeleteMaintenance(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.DeleteMaintenance(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Maintenance task deleted successfully")
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homebase/internal/model"
)

// ListAppliances handles GET /api/appliances?search=&status=.
func (h *Handler) ListAppliances(c *gin.Context) {
	var f model.ListFilter
	if err := bindQuery(c, &f); err != nil {
		h.fail(c, err)
		return
	}
	appliances, err := h.store.ListAppliances(c.Request.Context(), f, h.today())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, appliances, "Appliances retrieved successfully")
}

// GetApplianceStats handles GET /api/appliances/stats.
func (h *Handler) GetApplianceStats(c *gin.Context) {
	stats, err := h.store.ApplianceStats(c.Request.Context(), h.today())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "Statistics retrieved successfully")
}

// GetAppliance handles GET /api/appliances/:id, including tasks and contacts.
func (h *Handler) GetAppliance(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	detail, err := h.store.GetAppliance(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, detail, "Appliance retrieved successfully")
}

// CreateAppliance handles POST /api/appliances.
func (h *Handler) CreateAppliance(c *gin.Context) {
	var in model.ApplianceInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	a := in.Appliance()
	if err := h.store.CreateAppliance(c.Request.Context(), &a); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, a, "Appliance created successfully")
}

// UpdateAppliance handles PUT /api/appliances/:id.
func (h *Handler) UpdateAppliance(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var p model.AppliancePatch
	if err := bindJSON(c, &p); err != nil {
		h.fail(c, err)
		return
	}
	a, err := h.store.UpdateAppliance(c.Request.Context(), id, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, a, "Appliance updated successfully")
}

// DeleteAppliance handles DELETE /api/appliances/:id, removing its tasks and contacts too.
func (h *Handler) DeleteAppliance(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.DeleteAppliance(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Appliance deleted successfully")
}

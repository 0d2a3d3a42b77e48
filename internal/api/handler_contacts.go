package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homebase/internal/model"
)

func (h *Handler) ListContacts(c *gin.Context) {
	var f model.ListFilter
	if err := bindQuery(c, &f); err != nil {
		h.fail(c, err)
		return
	}
	contacts, err := h.store.ListContacts(c.Request.Context(), f.ApplianceID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, contacts, "Contacts retrieved successfully")
}

func (h *Handler) GetContact(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	contact, err := h.store.GetContact(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, contact, "Contact retrieved successfully")
}

// CreateContact handles POST /api/contacts. The appliance must exist.
func (h *Handler) CreateContact(c *gin.Context) {
	var in model.ContactInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	contact := in.Contact()
	if err := h.store.CreateContact(c.Request.Context(), &contact); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, contact, "Contact created successfully")
}

func (h *Handler) UpdateContact(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var p model.ContactPatch
	if err := bindJSON(c, &p); err != nil {
		h.fail(c, err)
		return
	}
	contact, err := h.store.UpdateContact(c.Request.Context(), id, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, contact, "Contact updated successfully")
}

func (h *Handler) DeleteContact(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.DeleteContact(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Contact deleted successfully")
}

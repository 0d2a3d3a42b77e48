package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"homebase/internal/apperr"
	"homebase/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint     string   `json:"endpoint" binding:"required,url"`
	P256DH       string   `json:"p256dh" binding:"required"`
	Auth         string   `json:"auth" binding:"required"`
	ApplianceIDs []string `json:"applianceIds" binding:"dive,uuid"`
}

// PutSubscription handles the creation or replacement of a subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.SaveSubscription(c.Request.Context(), &subscription, req.ApplianceIDs); err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, nil, "Subscription saved")
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles the deletion of a subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam returns a query value without URL-decoding it; push endpoints
// are compared byte for byte.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the appliances a subscription follows.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		h.fail(c, &apperr.ValidationError{Fields: []apperr.FieldError{{Field: "endpoint", Message: "is required"}}})
		return
	}

	subscription, err := h.store.GetSubscription(c.Request.Context(), raw)
	if err != nil {
		h.fail(c, err)
		return
	}

	applianceIDs := make([]string, len(subscription.Appliances))
	for i, appliance := range subscription.Appliances {
		applianceIDs[i] = appliance.ID
	}

	respond(c, http.StatusOK, gin.H{"applianceIds": applianceIDs}, "")
}

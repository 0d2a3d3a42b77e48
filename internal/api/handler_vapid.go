package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, response{Message: "vapid keys are not configured"})
		return
	}

	respond(c, http.StatusOK, gin.H{"publicKey": h.webpush.VAPIDPublicKey}, "")
}

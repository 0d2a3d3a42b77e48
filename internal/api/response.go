package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homebase/internal/apperr"
	"homebase/internal/validate"
)

// response is the envelope every endpoint answers with.
type response struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, response{Success: true, Data: data, Message: message})
}

// fail maps err onto a status code: validation 400, missing record 404,
// an unreachable database 503 and anything else 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, response{Message: "Validation failed", Errors: ve.Fields})
		return
	}

	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, response{Message: capitalize(nf.Kind) + " not found"})
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, response{Message: "Not found"})
		return
	}

	log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
	if pingErr := h.store.Ping(c.Request.Context()); pingErr != nil {
		c.JSON(http.StatusServiceUnavailable, response{Message: "Database temporarily unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, response{Message: "Internal server error"})
}

// bindJSON decodes and validates the request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return validate.FromError(err)
	}
	return nil
}

// bindQuery decodes and validates the query string into dst.
func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return validate.FromError(err)
	}
	return nil
}

// idParam returns the :id path parameter, which must be a UUID.
func idParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", &apperr.ValidationError{Fields: []apperr.FieldError{{Field: "id", Message: "must be a valid UUID"}}}
	}
	return id, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

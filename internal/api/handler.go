package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"homebase/internal/calendar"
	"homebase/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	webpush *webpush.Options
	now     func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		webpush: webpushOptions,
		now:     time.Now,
	}
}

func (h *Handler) today() calendar.Date {
	return calendar.DateOf(h.now())
}

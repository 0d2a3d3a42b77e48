// Package fallback routes each entity operation to the remote API or, when the
// remote is failing, to the on-device store.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"

	"homebase/internal/apperr"
	"homebase/internal/availability"
	"homebase/internal/calendar"
	"homebase/internal/localstore"
)

// Remote is the subset of the gateway the orchestrator needs.
type Remote interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// FallbackFunc is told about every degradation: a remote failure that sent a
// call to the local store, or a local read failure that produced an empty result.
type FallbackFunc func(op string, err error)

// Orchestrator owns the remote gateway, the local store and the tracker that
// decides between them. It is safe for concurrent use.
type Orchestrator struct {
	remote     Remote
	local      *localstore.Store
	tracker    *availability.Tracker
	onFallback FallbackFunc
	now        func() time.Time
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithFallbackHook installs fn as the degradation observer.
func WithFallbackHook(fn FallbackFunc) Option {
	return func(o *Orchestrator) { o.onFallback = fn }
}

// WithClock replaces time.Now for derived-status calculations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New wires an orchestrator.
func New(remote Remote, local *localstore.Store, tracker *availability.Tracker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		remote:  remote,
		local:   local,
		tracker: tracker,
		onFallback: func(op string, err error) {
			log.Printf("Falling back to local store for %s: %v", op, err)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Appliances returns the appliance façade.
func (o *Orchestrator) Appliances() *Appliances { return &Appliances{o: o} }

// Maintenance returns the maintenance task façade.
func (o *Orchestrator) Maintenance() *Maintenance { return &Maintenance{o: o} }

// Contacts returns the contact façade.
func (o *Orchestrator) Contacts() *Contacts { return &Contacts{o: o} }

// Degraded reports whether the degraded-mode banner should be shown.
func (o *Orchestrator) Degraded() bool { return o.tracker.ShowBanner() }

// InFallbackMode reports whether calls are currently routed to the local store.
func (o *Orchestrator) InFallbackMode() bool { return o.tracker.InFallbackMode() }

// DismissBanner hides the degraded-mode banner until the next failure.
func (o *Orchestrator) DismissBanner() { o.tracker.Dismiss() }

func (o *Orchestrator) today() calendar.Date {
	return calendar.DateOf(o.now())
}

func (o *Orchestrator) notify(op string, err error) {
	if o.onFallback != nil {
		o.onFallback(op, err)
	}
}

// execute runs one call against a single tier. The remote is tried first unless
// the tracker says it recently failed; any remote failure other than 404 or
// caller cancellation is recorded and the call is repeated on the local store.
func execute[T any](ctx context.Context, o *Orchestrator, op string, remote func(context.Context) (T, error), local func() (T, error)) (T, error) {
	var zero T
	var remoteErr error

	if !o.tracker.ShouldPreferLocal() {
		v, err := remote(ctx)
		switch {
		case err == nil:
			o.tracker.RecordSuccess()
			return v, nil
		case errors.Is(err, context.Canceled):
			return zero, err
		case isRemoteNotFound(err):
			o.tracker.RecordSuccess()
			return zero, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		remoteErr = classify(err)
		o.tracker.RecordFailure()
		o.notify(op, remoteErr)
	}

	v, err := local()
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, apperr.ErrNotFound), apperr.IsValidation(err):
		return zero, err
	case remoteErr != nil:
		return zero, &TotalFailureError{Op: op, Remote: remoteErr, Local: err}
	default:
		return zero, fmt.Errorf("local %s: %w", op, err)
	}
}

// read is execute for operations that always resolve to some data: a local
// failure is reported and replaced by empty.
func read[T any](ctx context.Context, o *Orchestrator, op string, empty T, remote func(context.Context) (T, error), local func() (T, error)) (T, error) {
	v, err := execute(ctx, o, op, remote, local)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, context.Canceled) {
		return empty, err
	}
	o.notify(op, err)
	return empty, nil
}

// discard adapts a result-less call for execute.
func discard(fn func() error) func() (struct{}, error) {
	return func() (struct{}, error) { return struct{}{}, fn() }
}

func discardCtx(fn func(context.Context) error) func(context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) { return struct{}{}, fn(ctx) }
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &apperr.ValidationError{Fields: []apperr.FieldError{{Field: "id", Message: "must be a valid UUID"}}}
	}
	return nil
}

// newestFirst orders records the way the server lists them.
func newestFirst[T any](records []T, created func(T) time.Time) {
	slices.SortStableFunc(records, func(a, b T) int {
		return created(b).Compare(created(a))
	})
}

func itemPath(collection, id string) string {
	return "/" + collection + "/" + url.PathEscape(id)
}

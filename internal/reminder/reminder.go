package reminder

import (
	"context"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"homebase/config"
	"homebase/internal/calendar"
	"homebase/internal/model"
)

// Store is the part of the persistence layer the scheduler reads and marks.
type Store interface {
	DueReminders(ctx context.Context, today calendar.Date) ([]model.UpcomingTask, error)
	MarkReminded(ctx context.Context, ids []string, at time.Time) error
}

// Dispatcher delivers reminders, usually a notification.WorkerPool.
type Dispatcher interface {
	Start(ctx context.Context)
	Dispatch(ctx context.Context, task model.UpcomingTask) error
}

// Service periodically looks for maintenance tasks whose reminder date has
// arrived and hands each one to the dispatcher exactly once.
type Service struct {
	cfg        config.ReminderConfig
	store      Store
	dispatcher Dispatcher
	loc        *time.Location
	now        func() time.Time
}

// NewService creates a reminder scheduler. An unknown timezone falls back to UTC.
func NewService(cfg config.ReminderConfig, store Store, dispatcher Dispatcher) *Service {
	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Warning: %v. Reminders will use UTC.", err)
		loc = time.UTC
	}
	return &Service{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		loc:        loc,
		now:        time.Now,
	}
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Run starts the scan loop and blocks until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Reminder scheduler is disabled. Not starting.")
		return
	}
	log.Println("Starting reminder scheduler...")

	s.dispatcher.Start(ctx)

	s.RunOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder scheduler shutting down.")
			return
		case <-timer.C:
			s.RunOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// RunOnce dispatches every due reminder and marks the dispatched tasks so
// later scans skip them. It returns how many were dispatched.
func (s *Service) RunOnce(ctx context.Context) int {
	now := s.now()
	today := calendar.DateOf(now.In(s.loc))

	due, err := s.store.DueReminders(ctx, today)
	if err != nil {
		log.Printf("Error loading due reminders: %v", err)
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	log.Printf("Dispatching %d maintenance reminders", len(due))
	ids := make([]string, 0, len(due))
	for _, task := range due {
		if err := s.dispatcher.Dispatch(ctx, task); err != nil {
			log.Printf("Reminder dispatch interrupted: %v", err)
			break
		}
		ids = append(ids, task.ID)
	}

	if err := s.store.MarkReminded(ctx, ids, now.UTC()); err != nil {
		log.Printf("Error marking reminders as sent: %v", err)
	}
	return len(ids)
}

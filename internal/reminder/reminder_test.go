package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebase/config"
	"homebase/internal/calendar"
	"homebase/internal/model"
)

type mockStore struct {
	DueRemindersFunc func(ctx context.Context, today calendar.Date) ([]model.UpcomingTask, error)

	mu       sync.Mutex
	marked   []string
	markedAt time.Time
}

func (m *mockStore) DueReminders(ctx context.Context, today calendar.Date) ([]model.UpcomingTask, error) {
	return m.DueRemindersFunc(ctx, today)
}

func (m *mockStore) MarkReminded(_ context.Context, ids []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, ids...)
	m.markedAt = at
	return nil
}

type mockDispatcher struct {
	mu      sync.Mutex
	started bool
	tasks   []model.UpcomingTask
	failOn  string
}

func (d *mockDispatcher) Start(context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = true
}

func (d *mockDispatcher) Dispatch(_ context.Context, task model.UpcomingTask) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if task.ID == d.failOn {
		return context.Canceled
	}
	d.tasks = append(d.tasks, task)
	return nil
}

func task(id string) model.UpcomingTask {
	return model.UpcomingTask{MaintenanceTask: model.MaintenanceTask{ID: id, ApplianceID: "a-" + id}}
}

func TestRunOnce_DispatchesAndMarks(t *testing.T) {
	var gotToday calendar.Date
	store := &mockStore{
		DueRemindersFunc: func(_ context.Context, today calendar.Date) ([]model.UpcomingTask, error) {
			gotToday = today
			return []model.UpcomingTask{task("1"), task("2")}, nil
		},
	}
	dispatcher := &mockDispatcher{}

	svc := NewService(config.ReminderConfig{Timezone: "Asia/Tokyo"}, store, dispatcher)
	// 20:00 UTC on 31 May is already 1 June in Tokyo.
	svc.now = func() time.Time { return time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC) }

	n := svc.RunOnce(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, calendar.MustParseDate("2024-06-01"), gotToday)
	assert.Len(t, dispatcher.tasks, 2)
	assert.Equal(t, []string{"1", "2"}, store.marked)
	assert.Equal(t, time.UTC, store.markedAt.Location())
}

func TestRunOnce_MarksOnlyDispatched(t *testing.T) {
	store := &mockStore{
		DueRemindersFunc: func(context.Context, calendar.Date) ([]model.UpcomingTask, error) {
			return []model.UpcomingTask{task("1"), task("2"), task("3")}, nil
		},
	}
	dispatcher := &mockDispatcher{failOn: "2"}

	svc := NewService(config.ReminderConfig{}, store, dispatcher)
	n := svc.RunOnce(context.Background())

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"1"}, store.marked)
}

func TestRunOnce_StoreError(t *testing.T) {
	store := &mockStore{
		DueRemindersFunc: func(context.Context, calendar.Date) ([]model.UpcomingTask, error) {
			return nil, errors.New("connection refused")
		},
	}
	dispatcher := &mockDispatcher{}

	n := NewService(config.ReminderConfig{}, store, dispatcher).RunOnce(context.Background())

	assert.Zero(t, n)
	assert.Empty(t, dispatcher.tasks)
	assert.Empty(t, store.marked)
}

func TestNewService_InvalidTimezone(t *testing.T) {
	svc := NewService(config.ReminderConfig{Timezone: "Nowhere/Special"}, &mockStore{}, &mockDispatcher{})
	assert.Equal(t, time.UTC, svc.loc)
}

func TestRun_Disabled(t *testing.T) {
	dispatcher := &mockDispatcher{}
	svc := NewService(config.ReminderConfig{Enabled: false}, &mockStore{}, dispatcher)

	svc.Run(context.Background())

	assert.False(t, dispatcher.started)
}

func TestRun_ScansUntilCancelled(t *testing.T) {
	scans := make(chan struct{}, 10)
	store := &mockStore{
		DueRemindersFunc: func(context.Context, calendar.Date) ([]model.UpcomingTask, error) {
			scans <- struct{}{}
			return nil, nil
		},
	}
	dispatcher := &mockDispatcher{}
	svc := NewService(config.ReminderConfig{Enabled: true, Interval: 10 * time.Millisecond}, store, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-scans:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not scan")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	require.True(t, dispatcher.started)
}

package fallback

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"time"

	"homebase/internal/calendar"
	"homebase/internal/gateway"
	"homebase/internal/localstore"
	"homebase/internal/model"
	"homebase/internal/validate"
)

// Maintenance is the maintenance task façade.
type Maintenance struct {
	o *Orchestrator
}

// List returns the tasks, optionally restricted to one appliance.
func (m *Maintenance) List(ctx context.Context, f model.ListFilter) ([]model.MaintenanceTask, error) {
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	owner := model.ListFilter{ApplianceID: f.ApplianceID}
	return read(ctx, m.o, "list maintenance", []model.MaintenanceTask{},
		func(ctx context.Context) ([]model.MaintenanceTask, error) {
			out := []model.MaintenanceTask{}
			err := m.o.remote.Get(ctx, gateway.WithQuery("/"+model.CollectionMaintenance, owner.Query()), &out)
			return out, err
		},
		func() ([]model.MaintenanceTask, error) {
			all, err := localstore.List[model.MaintenanceTask](m.o.local, model.CollectionMaintenance)
			if err != nil {
				return nil, err
			}
			out := make([]model.MaintenanceTask, 0, len(all))
			for _, t := range all {
				if owner.MatchOwner(t) {
					out = append(out, t)
				}
			}
			newestFirst(out, func(t model.MaintenanceTask) time.Time { return t.CreatedAt })
			return out, nil
		})
}

// Get returns one task.
func (m *Maintenance) Get(ctx context.Context, id string) (model.MaintenanceTask, error) {
	if err := checkID(id); err != nil {
		return model.MaintenanceTask{}, err
	}
	return execute(ctx, m.o, "get maintenance task",
		func(ctx context.Context) (model.MaintenanceTask, error) {
			var out model.MaintenanceTask
			err := m.o.remote.Get(ctx, itemPath(model.CollectionMaintenance, id), &out)
			return out, err
		},
		func() (model.MaintenanceTask, error) {
			return localstore.Get[model.MaintenanceTask](m.o.local, model.CollectionMaintenance, id)
		})
}

// Create schedules a new task; its reminder date is derived from date and frequency.
func (m *Maintenance) Create(ctx context.Context, in model.MaintenanceInput) (model.MaintenanceTask, error) {
	if err := validate.Struct(in); err != nil {
		return model.MaintenanceTask{}, err
	}
	return execute(ctx, m.o, "create maintenance task",
		func(ctx context.Context) (model.MaintenanceTask, error) {
			var out model.MaintenanceTask
			err := m.o.remote.Post(ctx, "/"+model.CollectionMaintenance, in, &out)
			return out, err
		},
		func() (model.MaintenanceTask, error) {
			return localstore.Create[model.MaintenanceTask](m.o.local, model.CollectionMaintenance, in.Task())
		})
}

// Update applies p to the task with the given id.
func (m *Maintenance) Update(ctx context.Context, id string, p model.MaintenancePatch) (model.MaintenanceTask, error) {
	if err := checkID(id); err != nil {
		return model.MaintenanceTask{}, err
	}
	if err := validate.Struct(p); err != nil {
		return model.MaintenanceTask{}, err
	}
	return execute(ctx, m.o, "update maintenance task",
		func(ctx context.Context) (model.MaintenanceTask, error) {
			var out model.MaintenanceTask
			err := m.o.remote.Put(ctx, itemPath(model.CollectionMaintenance, id), p, &out)
			return out, err
		},
		func() (model.MaintenanceTask, error) {
			return localstore.Update[model.MaintenanceTask](m.o.local, model.CollectionMaintenance, id, func(t *model.MaintenanceTask) error {
				p.Apply(t)
				return nil
			})
		})
}

// SetCompleted marks a task done or not done.
func (m *Maintenance) SetCompleted(ctx context.Context, id string, done bool) (model.MaintenanceTask, error) {
	return m.Update(ctx, id, model.MaintenancePatch{Completed: &done})
}

// Delete removes a task.
func (m *Maintenance) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	_, err := execute(ctx, m.o, "delete maintenance task",
		discardCtx(func(ctx context.Context) error {
			return m.o.remote.Delete(ctx, itemPath(model.CollectionMaintenance, id))
		}),
		discard(func() error {
			return localstore.Delete[model.MaintenanceTask](m.o.local, model.CollectionMaintenance, id)
		}))
	return err
}

// Upcoming lists open tasks whose reminder falls within the next days days,
// soonest first. A non-positive days uses model.DefaultUpcomingDays.
func (m *Maintenance) Upcoming(ctx context.Context, days int) ([]model.UpcomingTask, error) {
	if days <= 0 {
		days = model.DefaultUpcomingDays
	}
	return read(ctx, m.o, "upcoming maintenance", []model.UpcomingTask{},
		func(ctx context.Context) ([]model.UpcomingTask, error) {
			out := []model.UpcomingTask{}
			q := url.Values{}
			q.Set("days", strconv.Itoa(days))
			err := m.o.remote.Get(ctx, gateway.WithQuery("/"+model.CollectionMaintenance+"/upcoming", q), &out)
			return out, err
		},
		func() ([]model.UpcomingTask, error) {
			return localUpcoming(m.o.local, m.o.today(), days)
		})
}

func localUpcoming(s *localstore.Store, today calendar.Date, days int) ([]model.UpcomingTask, error) {
	appliances, err := localstore.List[model.Appliance](s, model.CollectionAppliances)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(appliances))
	for _, a := range appliances {
		names[a.ID] = a.Name
	}

	tasks, err := localstore.List[model.MaintenanceTask](s, model.CollectionMaintenance)
	if err != nil {
		return nil, err
	}
	out := []model.UpcomingTask{}
	for _, t := range tasks {
		name, ok := names[t.ApplianceID]
		if !ok || t.Completed || !calendar.IsUpcoming(t.ReminderDate, today, days) {
			continue
		}
		out = append(out, model.UpcomingTask{MaintenanceTask: t, ApplianceName: name})
	}
	slices.SortStableFunc(out, func(a, b model.UpcomingTask) int {
		return a.ReminderDate.Time().Compare(b.ReminderDate.Time())
	})
	return out, nil
}

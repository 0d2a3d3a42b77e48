package fallback

import (
	"context"
	"time"

	"homebase/internal/gateway"
	"homebase/internal/localstore"
	"homebase/internal/model"
	"homebase/internal/validate"
)

// Appliances is the appliance façade.
type Appliances struct {
	o *Orchestrator
}

// List returns the appliances matching f. It only fails on an invalid filter
// or a cancelled context; a failing local store yields an empty list.
func (a *Appliances) List(ctx context.Context, f model.ListFilter) ([]model.Appliance, error) {
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	return read(ctx, a.o, "list appliances", []model.Appliance{},
		func(ctx context.Context) ([]model.Appliance, error) {
			out := []model.Appliance{}
			err := a.o.remote.Get(ctx, gateway.WithQuery("/"+model.CollectionAppliances, f.Query()), &out)
			return out, err
		},
		func() ([]model.Appliance, error) {
			all, err := localstore.List[model.Appliance](a.o.local, model.CollectionAppliances)
			if err != nil {
				return nil, err
			}
			today := a.o.today()
			out := make([]model.Appliance, 0, len(all))
			for _, ap := range all {
				if f.MatchAppliance(ap, today) {
					out = append(out, ap)
				}
			}
			newestFirst(out, func(ap model.Appliance) time.Time { return ap.CreatedAt })
			return out, nil
		})
}

// Get returns one appliance with its maintenance tasks and contacts.
func (a *Appliances) Get(ctx context.Context, id string) (model.ApplianceDetail, error) {
	if err := checkID(id); err != nil {
		return model.ApplianceDetail{}, err
	}
	return execute(ctx, a.o, "get appliance",
		func(ctx context.Context) (model.ApplianceDetail, error) {
			var out model.ApplianceDetail
			err := a.o.remote.Get(ctx, itemPath(model.CollectionAppliances, id), &out)
			return out, err
		},
		func() (model.ApplianceDetail, error) {
			return localDetail(a.o.local, id)
		})
}

func localDetail(s *localstore.Store, id string) (model.ApplianceDetail, error) {
	ap, err := localstore.Get[model.Appliance](s, model.CollectionAppliances, id)
	if err != nil {
		return model.ApplianceDetail{}, err
	}
	owner := model.ListFilter{ApplianceID: id}

	tasks, err := localstore.List[model.MaintenanceTask](s, model.CollectionMaintenance)
	if err != nil {
		return model.ApplianceDetail{}, err
	}
	detail := model.ApplianceDetail{Appliance: ap, MaintenanceTasks: []model.MaintenanceTask{}, Contacts: []model.Contact{}}
	for _, t := range tasks {
		if owner.MatchOwner(t) {
			detail.MaintenanceTasks = append(detail.MaintenanceTasks, t)
		}
	}

	contacts, err := localstore.List[model.Contact](s, model.CollectionContacts)
	if err != nil {
		return model.ApplianceDetail{}, err
	}
	for _, c := range contacts {
		if owner.MatchOwner(c) {
			detail.Contacts = append(detail.Contacts, c)
		}
	}

	newestFirst(detail.MaintenanceTasks, func(t model.MaintenanceTask) time.Time { return t.CreatedAt })
	newestFirst(detail.Contacts, func(c model.Contact) time.Time { return c.CreatedAt })
	return detail, nil
}

// Create stores a new appliance.
func (a *Appliances) Create(ctx context.Context, in model.ApplianceInput) (model.Appliance, error) {
	if err := validate.Struct(in); err != nil {
		return model.Appliance{}, err
	}
	return execute(ctx, a.o, "create appliance",
		func(ctx context.Context) (model.Appliance, error) {
			var out model.Appliance
			err := a.o.remote.Post(ctx, "/"+model.CollectionAppliances, in, &out)
			return out, err
		},
		func() (model.Appliance, error) {
			return localstore.Create[model.Appliance](a.o.local, model.CollectionAppliances, in.Appliance())
		})
}

// Update applies p to the appliance with the given id.
func (a *Appliances) Update(ctx context.Context, id string, p model.AppliancePatch) (model.Appliance, error) {
	if err := checkID(id); err != nil {
		return model.Appliance{}, err
	}
	if err := validate.Struct(p); err != nil {
		return model.Appliance{}, err
	}
	return execute(ctx, a.o, "update appliance",
		func(ctx context.Context) (model.Appliance, error) {
			var out model.Appliance
			err := a.o.remote.Put(ctx, itemPath(model.CollectionAppliances, id), p, &out)
			return out, err
		},
		func() (model.Appliance, error) {
			return localstore.Update[model.Appliance](a.o.local, model.CollectionAppliances, id, func(rec *model.Appliance) error {
				p.Apply(rec)
				return nil
			})
		})
}

// Delete removes an appliance and everything that references it.
func (a *Appliances) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	_, err := execute(ctx, a.o, "delete appliance",
		discardCtx(func(ctx context.Context) error {
			return a.o.remote.Delete(ctx, itemPath(model.CollectionAppliances, id))
		}),
		discard(func() error {
			return a.o.local.DeleteAppliance(id)
		}))
	return err
}

// Stats counts appliances by warranty status.
func (a *Appliances) Stats(ctx context.Context) (model.ApplianceStats, error) {
	return read(ctx, a.o, "appliance stats", model.ApplianceStats{},
		func(ctx context.Context) (model.ApplianceStats, error) {
			var out model.ApplianceStats
			err := a.o.remote.Get(ctx, "/"+model.CollectionAppliances+"/stats", &out)
			return out, err
		},
		func() (model.ApplianceStats, error) {
			all, err := localstore.List[model.Appliance](a.o.local, model.CollectionAppliances)
			if err != nil {
				return model.ApplianceStats{}, err
			}
			return model.ComputeStats(all, a.o.today()), nil
		})
}

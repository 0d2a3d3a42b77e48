package fallback

import (
	"context"
	"time"

	"homebase/internal/gateway"
	"homebase/internal/localstore"
	"homebase/internal/model"
	"homebase/internal/validate"
)

// Contacts is the contact façade.
type Contacts struct {
	o *Orchestrator
}

// List returns the contacts, optionally restricted to one appliance.
func (c *Contacts) List(ctx context.Context, f model.ListFilter) ([]model.Contact, error) {
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	owner := model.ListFilter{ApplianceID: f.ApplianceID}
	return read(ctx, c.o, "list contacts", []model.Contact{},
		func(ctx context.Context) ([]model.Contact, error) {
			out := []model.Contact{}
			err := c.o.remote.Get(ctx, gateway.WithQuery("/"+model.CollectionContacts, owner.Query()), &out)
			return out, err
		},
		func() ([]model.Contact, error) {
			all, err := localstore.List[model.Contact](c.o.local, model.CollectionContacts)
			if err != nil {
				return nil, err
			}
			out := make([]model.Contact, 0, len(all))
			for _, ct := range all {
				if owner.MatchOwner(ct) {
					out = append(out, ct)
				}
			}
			newestFirst(out, func(ct model.Contact) time.Time { return ct.CreatedAt })
			return out, nil
		})
}

// Get returns one contact.
func (c *Contacts) Get(ctx context.Context, id string) (model.Contact, error) {
	if err := checkID(id); err != nil {
		return model.Contact{}, err
	}
	return execute(ctx, c.o, "get contact",
		func(ctx context.Context) (model.Contact, error) {
			var out model.Contact
			err := c.o.remote.Get(ctx, itemPath(model.CollectionContacts, id), &out)
			return out, err
		},
		func() (model.Contact, error) {
			return localstore.Get[model.Contact](c.o.local, model.CollectionContacts, id)
		})
}

// Create adds a contact for an appliance.
func (c *Contacts) Create(ctx context.Context, in model.ContactInput) (model.Contact, error) {
	if err := validate.Struct(in); err != nil {
		return model.Contact{}, err
	}
	return execute(ctx, c.o, "create contact",
		func(ctx context.Context) (model.Contact, error) {
			var out model.Contact
			err := c.o.remote.Post(ctx, "/"+model.CollectionContacts, in, &out)
			return out, err
		},
		func() (model.Contact, error) {
			return localstore.Create[model.Contact](c.o.local, model.CollectionContacts, in.Contact())
		})
}

// Update applies p to the contact with the given id. A patch that leaves the
// contact with neither phone nor email is rejected.
func (c *Contacts) Update(ctx context.Context, id string, p model.ContactPatch) (model.Contact, error) {
	if err := checkID(id); err != nil {
		return model.Contact{}, err
	}
	if err := validate.Struct(p); err != nil {
		return model.Contact{}, err
	}
	return execute(ctx, c.o, "update contact",
		func(ctx context.Context) (model.Contact, error) {
			var out model.Contact
			err := c.o.remote.Put(ctx, itemPath(model.CollectionContacts, id), p, &out)
			return out, err
		},
		func() (model.Contact, error) {
			return localstore.Update[model.Contact](c.o.local, model.CollectionContacts, id, func(ct *model.Contact) error {
				p.Apply(ct)
				return ct.Validate()
			})
		})
}

// Delete removes a contact.
func (c *Contacts) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	_, err := execute(ctx, c.o, "delete contact",
		discardCtx(func(ctx context.Context) error {
			return c.o.remote.Delete(ctx, itemPath(model.CollectionContacts, id))
		}),
		discard(func() error {
			return localstore.Delete[model.Contact](c.o.local, model.CollectionContacts, id)
		}))
	return err
}

package localstore

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebase/internal/apperr"
	"homebase/internal/calendar"
	"homebase/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fridge() model.Appliance {
	return model.ApplianceInput{
		Name:                 "Fridge",
		Brand:                "Acme",
		Model:                "CoolMax 300",
		PurchaseDate:         calendar.MustParseDate("2024-01-15"),
		WarrantyPeriodMonths: 24,
	}.Appliance()
}

func TestStore_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	empty, err := List[model.Appliance](s, model.CollectionAppliances)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	created, err := Create(s, model.CollectionAppliances, fridge())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, fixed, created.CreatedAt)
	assert.Equal(t, fixed, created.UpdatedAt)
	assert.Equal(t, "2026-01-15", created.WarrantyExpiry.String())

	list, err := List[model.Appliance](s, model.CollectionAppliances)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])

	got, err := Get[model.Appliance](s, model.CollectionAppliances, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s := newTestStore(t)
	const writers = 20

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := fridge()
			a.Name = fmt.Sprintf("Fridge %d", i)
			_, err := Create(s, model.CollectionAppliances, a)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := List[model.Appliance](s, model.CollectionAppliances)
	require.NoError(t, err)
	require.Len(t, list, writers)

	wg = sync.WaitGroup{}
	updateErrs := make(chan error, writers)
	for _, a := range list {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := Update(s, model.CollectionAppliances, id, func(a *model.Appliance) error {
				a.SerialNumber = "checked"
				return nil
			})
			updateErrs <- err
		}(a.ID)
	}
	wg.Wait()
	close(updateErrs)
	for err := range updateErrs {
		require.NoError(t, err)
	}

	list, err = List[model.Appliance](s, model.CollectionAppliances)
	require.NoError(t, err)
	require.Len(t, list, writers)
	for _, a := range list {
		assert.Equal(t, "checked", a.SerialNumber)
	}
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)
	created, err := Create(s, model.CollectionAppliances, fridge())
	require.NoError(t, err)

	later := created.CreatedAt.Add(time.Hour)
	s.now = func() time.Time { return later }

	months := 36
	updated, err := Update(s, model.CollectionAppliances, created.ID, func(a *model.Appliance) error {
		model.AppliancePatch{WarrantyPeriodMonths: &months}.Apply(a)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "2027-01-15", updated.WarrantyExpiry.String())
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = Update(s, model.CollectionAppliances, "missing", func(a *model.Appliance) error { return nil })
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	c, err := Create(s, model.CollectionContacts, model.Contact{ApplianceID: "a1", ContactName: "Repair Co", Phone: "555"})
	require.NoError(t, err)

	require.NoError(t, Delete[model.Contact](s, model.CollectionContacts, c.ID))
	err = Delete[model.Contact](s, model.CollectionContacts, c.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = Get[model.Contact](s, model.CollectionContacts, c.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestStore_DeleteApplianceCascades(t *testing.T) {
	s := newTestStore(t)
	target, err := Create(s, model.CollectionAppliances, fridge())
	require.NoError(t, err)
	other, err := Create(s, model.CollectionAppliances, fridge())
	require.NoError(t, err)

	for _, owner := range []string{target.ID, target.ID, other.ID} {
		_, err := Create(s, model.CollectionMaintenance, model.MaintenanceInput{
			ApplianceID:            owner,
			TaskName:               "Clean coils",
			Date:                   calendar.MustParseDate("2024-02-01"),
			Frequency:              calendar.Yearly,
			ServiceProviderName:    "Self",
			ServiceProviderContact: "-",
		}.Task())
		require.NoError(t, err)
	}
	_, err = Create(s, model.CollectionContacts, model.Contact{ApplianceID: target.ID, ContactName: "Acme Support", Email: "help@acme.test"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAppliance(target.ID))

	appliances, err := List[model.Appliance](s, model.CollectionAppliances)
	require.NoError(t, err)
	require.Len(t, appliances, 1)
	assert.Equal(t, other.ID, appliances[0].ID)

	tasks, err := List[model.MaintenanceTask](s, model.CollectionMaintenance)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, other.ID, tasks[0].ApplianceID)

	contacts, err := List[model.Contact](s, model.CollectionContacts)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	assert.True(t, errors.Is(s.DeleteAppliance(target.ID), apperr.ErrNotFound))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	created, err := Create(s, model.CollectionAppliances, fridge())
	require.NoError(t, err)
	require.NoError(t, s.SaveState("api_status", []byte(`{"status":"unavailable"}`)))
	require.NoError(t, s.Close())

	reopened, err := Open(Config{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	list, err := List[model.Appliance](reopened, model.CollectionAppliances)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	raw, err := reopened.LoadState("api_status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"unavailable"}`, string(raw))

	missing, err := reopened.LoadState("nothing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

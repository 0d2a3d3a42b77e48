package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"homebase/internal/apperr"
	"homebase/internal/calendar"
	"homebase/internal/db"
	"homebase/internal/model"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore opens a private in-memory database with the schema applied.
func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB)
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_DeleteApplianceCascade(t *testing.T) {
	id := uuid.NewString()

	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectNotFound   bool
		expectErr        bool
	}{
		{
			name: "deletes children before the appliance",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "maintenance_tasks" WHERE appliance_id = $1`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "contacts" WHERE appliance_id = $1`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscription_appliances WHERE appliance_id = $1`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "appliances" WHERE id = $1`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "unknown appliance rolls back",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "maintenance_tasks"`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "contacts"`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscription_appliances`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "appliances"`)).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectNotFound: true,
			expectErr:      true,
		},
		{
			name: "child delete failure rolls back",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "maintenance_tasks"`)).
					WithArgs(id).
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newMockDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := s.DeleteAppliance(context.Background(), id)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectNotFound, errors.Is(err, apperr.ErrNotFound))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_MarkReminded(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "maintenance_tasks" SET "reminder_sent_at"=$1 WHERE id IN ($2,$3)`)).
		WithArgs(at, "a", "b").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.MarkReminded(context.Background(), []string{"a", "b"}, at))
	require.NoError(t, s.MarkReminded(context.Background(), nil, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newAppliance(name string, purchase string, months int) *model.Appliance {
	a := model.ApplianceInput{
		Name:                 name,
		Brand:                "Acme",
		Model:                name + " 3000",
		PurchaseDate:         calendar.MustParseDate(purchase),
		WarrantyPeriodMonths: months,
	}.Appliance()
	return &a
}

func newTask(applianceID, name, date string, f calendar.Frequency) *model.MaintenanceTask {
	t := model.MaintenanceInput{
		ApplianceID:            applianceID,
		TaskName:               name,
		Date:                   calendar.MustParseDate(date),
		Frequency:              f,
		ServiceProviderName:    "Self",
		ServiceProviderContact: "n/a",
	}.Task()
	return &t
}

func TestGormStore_ApplianceCRUD(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	fridge := newAppliance("Fridge", "2024-01-15", 24)
	require.NoError(t, s.CreateAppliance(ctx, fridge))
	require.NotEmpty(t, fridge.ID)
	assert.False(t, fridge.CreatedAt.IsZero())

	detail, err := s.GetAppliance(ctx, fridge.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fridge", detail.Name)
	assert.Equal(t, "2024-01-15", detail.PurchaseDate.String())
	assert.Equal(t, "2026-01-15", detail.WarrantyExpiry.String())
	assert.Empty(t, detail.MaintenanceTasks)
	assert.NotNil(t, detail.Contacts)

	months := 36
	link := "https://example.com/manual.pdf"
	updated, err := s.UpdateAppliance(ctx, fridge.ID, model.AppliancePatch{WarrantyPeriodMonths: &months, ManualLink: &link})
	require.NoError(t, err)
	assert.Equal(t, "2027-01-15", updated.WarrantyExpiry.String())
	assert.Equal(t, link, updated.ManualLink)

	_, err = s.UpdateAppliance(ctx, uuid.NewString(), model.AppliancePatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.GetAppliance(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGormStore_ListAppliancesFilters(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	today := calendar.MustParseDate("2024-06-01")

	active := newAppliance("Fridge", "2024-01-15", 24)
	soon := newAppliance("Washer", "2023-06-20", 12)
	expired := newAppliance("Television", "2020-01-01", 12)
	expired.SerialNumber = "TV-XYZ"
	for _, a := range []*model.Appliance{active, soon, expired} {
		require.NoError(t, s.CreateAppliance(ctx, a))
	}

	all, err := s.ListAppliances(ctx, model.ListFilter{}, today)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cases := map[string]string{
		string(calendar.StatusActive):       "Fridge",
		string(calendar.StatusExpiringSoon): "Washer",
		string(calendar.StatusExpired):      "Television",
	}
	for status, name := range cases {
		list, err := s.ListAppliances(ctx, model.ListFilter{Status: status}, today)
		require.NoError(t, err)
		require.Len(t, list, 1, status)
		assert.Equal(t, name, list[0].Name)
	}

	list, err := s.ListAppliances(ctx, model.ListFilter{Search: "tv-x"}, today)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, expired.ID, list[0].ID)

	list, err = s.ListAppliances(ctx, model.ListFilter{Search: "ACME", Status: "all"}, today)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	stats, err := s.ApplianceStats(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, model.ApplianceStats{Total: 3, Active: 1, ExpiringSoon: 1, Expired: 1}, stats)
}

func TestGormStore_MaintenanceAndContacts(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	fridge := newAppliance("Fridge", "2024-01-15", 24)
	require.NoError(t, s.CreateAppliance(ctx, fridge))

	err := s.CreateMaintenance(ctx, newTask(uuid.NewString(), "Orphan", "2024-06-10", calendar.OneTime))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	task := newTask(fridge.ID, "Clean coils", "2024-01-15", calendar.Quarterly)
	require.NoError(t, s.CreateMaintenance(ctx, task))
	assert.Equal(t, "2024-04-15", task.ReminderDate.String())

	monthly := calendar.Monthly
	updated, err := s.UpdateMaintenance(ctx, task.ID, model.MaintenancePatch{Frequency: &monthly})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-15", updated.ReminderDate.String())

	got, err := s.GetMaintenance(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, calendar.Monthly, got.Frequency)

	err = s.CreateContact(ctx, &model.Contact{ApplianceID: uuid.NewString(), ContactName: "Nobody", Phone: "1"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	contact := &model.Contact{ApplianceID: fridge.ID, ContactName: "Acme support", Phone: "555-0100"}
	require.NoError(t, s.CreateContact(ctx, contact))
	email := "help@acme.example"
	updatedContact, err := s.UpdateContact(ctx, contact.ID, model.ContactPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updatedContact.Email)
	assert.Equal(t, "555-0100", updatedContact.Phone)

	blank := ""
	_, err = s.UpdateContact(ctx, contact.ID, model.ContactPatch{Phone: &blank, Email: &blank})
	assert.True(t, apperr.IsValidation(err))
	stored, err := s.GetContact(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", stored.Phone)

	tasks, err := s.ListMaintenance(ctx, fridge.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	contacts, err := s.ListContacts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, contacts, 1)

	require.NoError(t, s.DeleteContact(ctx, contact.ID))
	assert.ErrorIs(t, s.DeleteContact(ctx, contact.ID), apperr.ErrNotFound)
	require.NoError(t, s.DeleteMaintenance(ctx, task.ID))
	_, err = s.GetMaintenance(ctx, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGormStore_DeleteApplianceRemovesDependents(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	fridge := newAppliance("Fridge", "2024-01-15", 24)
	washer := newAppliance("Washer", "2024-02-01", 12)
	require.NoError(t, s.CreateAppliance(ctx, fridge))
	require.NoError(t, s.CreateAppliance(ctx, washer))
	require.NoError(t, s.CreateMaintenance(ctx, newTask(fridge.ID, "Coils", "2024-06-10", calendar.Yearly)))
	require.NoError(t, s.CreateMaintenance(ctx, newTask(fridge.ID, "Filter", "2024-06-10", calendar.BiYearly)))
	require.NoError(t, s.CreateMaintenance(ctx, newTask(washer.ID, "Drum", "2024-06-10", calendar.Monthly)))
	require.NoError(t, s.CreateContact(ctx, &model.Contact{ApplianceID: fridge.ID, ContactName: "Acme", Phone: "1"}))
	require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{Endpoint: "https://push.example/1", P256DH: "k", Auth: "a"},
		[]string{fridge.ID, washer.ID}))

	require.NoError(t, s.DeleteAppliance(ctx, fridge.ID))

	tasks, err := s.ListMaintenance(ctx, fridge.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	all, err := s.ListMaintenance(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	contacts, err := s.ListContacts(ctx, fridge.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	sub, err := s.GetSubscription(ctx, "https://push.example/1")
	require.NoError(t, err)
	require.Len(t, sub.Appliances, 1)
	assert.Equal(t, washer.ID, sub.Appliances[0].ID)

	assert.ErrorIs(t, s.DeleteAppliance(ctx, fridge.ID), apperr.ErrNotFound)
}

func TestGormStore_UpcomingAndDueReminders(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	today := calendar.MustParseDate("2024-06-01")

	fridge := newAppliance("Fridge", "2024-01-15", 24)
	require.NoError(t, s.CreateAppliance(ctx, fridge))

	soon := newTask(fridge.ID, "Soon", "2024-06-05", calendar.OneTime)
	later := newTask(fridge.ID, "Later", "2024-05-10", calendar.Monthly)
	overdue := newTask(fridge.ID, "Overdue", "2024-05-20", calendar.OneTime)
	far := newTask(fridge.ID, "Far", "2024-08-01", calendar.OneTime)
	done := newTask(fridge.ID, "Done", "2024-06-02", calendar.OneTime)
	done.Completed = true
	for _, task := range []*model.MaintenanceTask{soon, later, overdue, far, done} {
		require.NoError(t, s.CreateMaintenance(ctx, task))
	}

	upcoming, err := s.UpcomingMaintenance(ctx, today, 14)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "Soon", upcoming[0].TaskName)
	assert.Equal(t, "Later", upcoming[1].TaskName)
	assert.Equal(t, "2024-06-10", upcoming[1].ReminderDate.String())
	assert.Equal(t, "Fridge", upcoming[1].ApplianceName)

	due, err := s.DueReminders(ctx, calendar.MustParseDate("2024-06-05"))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "Overdue", due[0].TaskName)
	assert.Equal(t, "Soon", due[1].TaskName)

	require.NoError(t, s.MarkReminded(ctx, []string{due[0].ID, due[1].ID}, time.Now()))
	due, err = s.DueReminders(ctx, calendar.MustParseDate("2024-06-05"))
	require.NoError(t, err)
	assert.Empty(t, due)

	// Moving the reminder makes it due again.
	newDate := calendar.MustParseDate("2024-06-03")
	_, err = s.UpdateMaintenance(ctx, soon.ID, model.MaintenancePatch{Date: &newDate})
	require.NoError(t, err)
	due, err = s.DueReminders(ctx, calendar.MustParseDate("2024-06-05"))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)
}

func TestGormStore_Subscriptions(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	fridge := newAppliance("Fridge", "2024-01-15", 24)
	require.NoError(t, s.CreateAppliance(ctx, fridge))

	sub := &model.PushSubscription{Endpoint: "https://push.example/abc", P256DH: "key", Auth: "auth"}
	require.NoError(t, s.SaveSubscription(ctx, sub, []string{fridge.ID}))

	subs, err := s.SubscriptionsForAppliance(ctx, fridge.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "key", subs[0].P256DH)

	replaced := &model.PushSubscription{Endpoint: "https://push.example/abc", P256DH: "key2", Auth: "auth2"}
	require.NoError(t, s.SaveSubscription(ctx, replaced, nil))
	got, err := s.GetSubscription(ctx, "https://push.example/abc")
	require.NoError(t, err)
	assert.Equal(t, "key2", got.P256DH)
	assert.Empty(t, got.Appliances)

	require.NoError(t, s.DeleteSubscription(ctx, "https://push.example/abc"))
	_, err = s.GetSubscription(ctx, "https://push.example/abc")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGormStore_Ping(t *testing.T) {
	s := newSQLiteStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

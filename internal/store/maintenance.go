package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homebase/internal/apperr"
	"homebase/internal/calendar"
	"homebase/internal/model"
)

// ListMaintenance returns tasks newest first, optionally for one appliance.
func (s *gormStore) ListMaintenance(ctx context.Context, applianceID string) ([]model.MaintenanceTask, error) {
	q := s.db.WithContext(ctx).Model(&model.MaintenanceTask{})
	if applianceID != "" {
		q = q.Where("appliance_id = ?", applianceID)
	}
	tasks := []model.MaintenanceTask{}
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list maintenance: %w", err)
	}
	return tasks, nil
}

func (s *gormStore) GetMaintenance(ctx context.Context, id string) (model.MaintenanceTask, error) {
	var t model.MaintenanceTask
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return t, notFound(err, "maintenance task", id)
	}
	return t, nil
}

// CreateMaintenance stores t after checking that its appliance exists.
func (s *gormStore) CreateMaintenance(ctx context.Context, t *model.MaintenanceTask) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applianceExists(tx, t.ApplianceID); err != nil {
			return err
		}
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("failed to create maintenance task: %w", err)
		}
		return nil
	})
}

// UpdateMaintenance applies p and recomputes the reminder date. A moved
// reminder is sent again.
func (s *gormStore) UpdateMaintenance(ctx context.Context, id string, p model.MaintenancePatch) (model.MaintenanceTask, error) {
	var t model.MaintenanceTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return notFound(err, "maintenance task", id)
		}
		if p.ApplianceID != nil && *p.ApplianceID != t.ApplianceID {
			if err := applianceExists(tx, *p.ApplianceID); err != nil {
				return err
			}
		}
		previous := t.ReminderDate
		p.Apply(&t)
		if !t.ReminderDate.Equal(previous) {
			t.ReminderSentAt = nil
		}
		if err := tx.Save(&t).Error; err != nil {
			return fmt.Errorf("failed to update maintenance task %s: %w", id, err)
		}
		return nil
	})
	return t, err
}

func (s *gormStore) DeleteMaintenance(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.MaintenanceTask{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete maintenance task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("maintenance task", id)
	}
	return nil
}

// withApplianceName selects open tasks joined with the name of their appliance.
func (s *gormStore) withApplianceName(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&model.MaintenanceTask{}).
		Select("maintenance_tasks.*, appliances.name AS appliance_name").
		Joins("JOIN appliances ON appliances.id = maintenance_tasks.appliance_id").
		Where("maintenance_tasks.completed = ?", false)
}

// UpcomingMaintenance returns open tasks whose reminder falls in [today, today+days], soonest first.
func (s *gormStore) UpcomingMaintenance(ctx context.Context, today calendar.Date, days int) ([]model.UpcomingTask, error) {
	tasks := []model.UpcomingTask{}
	err := s.withApplianceName(ctx).
		Where("maintenance_tasks.reminder_date >= ? AND maintenance_tasks.reminder_date <= ?", today, today.AddDays(days)).
		Order("maintenance_tasks.reminder_date ASC").
		Scan(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming maintenance: %w", err)
	}
	return tasks, nil
}

// DueReminders returns open tasks whose reminder date has arrived and that
// have not been reminded yet.
func (s *gormStore) DueReminders(ctx context.Context, today calendar.Date) ([]model.UpcomingTask, error) {
	tasks := []model.UpcomingTask{}
	err := s.withApplianceName(ctx).
		Where("maintenance_tasks.reminder_date <= ? AND maintenance_tasks.reminder_sent_at IS NULL", today).
		Order("maintenance_tasks.reminder_date ASC").
		Scan(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return tasks, nil
}

// MarkReminded records that reminders for ids were dispatched at at.
func (s *gormStore) MarkReminded(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&model.MaintenanceTask{}).
		Where("id IN ?", ids).
		UpdateColumn("reminder_sent_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark %d reminders as sent: %w", len(ids), err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"homebase/internal/apperr"
	"homebase/internal/calendar"
	"homebase/internal/model"
)

// ListAppliances returns appliances newest first, narrowed by the search text
// and the warranty status as of today.
func (s *gormStore) ListAppliances(ctx context.Context, f model.ListFilter, today calendar.Date) ([]model.Appliance, error) {
	q := s.db.WithContext(ctx).Model(&model.Appliance{})

	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ? OR LOWER(serial_number) LIKE ?",
			like, like, like, like)
	}

	soon := today.AddDays(calendar.ExpiringSoonDays)
	switch calendar.WarrantyStatus(f.Status) {
	case calendar.StatusExpired:
		q = q.Where("warranty_expiry <= ?", today)
	case calendar.StatusExpiringSoon:
		q = q.Where("warranty_expiry > ? AND warranty_expiry <= ?", today, soon)
	case calendar.StatusActive:
		q = q.Where("warranty_expiry > ?", soon)
	}

	appliances := []model.Appliance{}
	if err := q.Order("created_at DESC").Find(&appliances).Error; err != nil {
		return nil, fmt.Errorf("failed to list appliances: %w", err)
	}
	return appliances, nil
}

// GetAppliance returns the appliance with its tasks and contacts.
func (s *gormStore) GetAppliance(ctx context.Context, id string) (model.ApplianceDetail, error) {
	db := s.db.WithContext(ctx)

	var detail model.ApplianceDetail
	if err := db.First(&detail.Appliance, "id = ?", id).Error; err != nil {
		return detail, notFound(err, "appliance", id)
	}

	detail.MaintenanceTasks = []model.MaintenanceTask{}
	if err := db.Where("appliance_id = ?", id).Order("created_at DESC").Find(&detail.MaintenanceTasks).Error; err != nil {
		return detail, fmt.Errorf("failed to load maintenance for appliance %s: %w", id, err)
	}
	detail.Contacts = []model.Contact{}
	if err := db.Where("appliance_id = ?", id).Order("created_at DESC").Find(&detail.Contacts).Error; err != nil {
		return detail, fmt.Errorf("failed to load contacts for appliance %s: %w", id, err)
	}
	return detail, nil
}

func (s *gormStore) CreateAppliance(ctx context.Context, a *model.Appliance) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create appliance: %w", err)
	}
	return nil
}

// UpdateAppliance applies p and recomputes the warranty expiry.
func (s *gormStore) UpdateAppliance(ctx context.Context, id string, p model.AppliancePatch) (model.Appliance, error) {
	var a model.Appliance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return notFound(err, "appliance", id)
		}
		p.Apply(&a)
		if err := tx.Save(&a).Error; err != nil {
			return fmt.Errorf("failed to update appliance %s: %w", id, err)
		}
		return nil
	})
	return a, err
}

// DeleteAppliance removes the appliance and everything that references it in one transaction.
func (s *gormStore) DeleteAppliance(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.MaintenanceTask{}, "appliance_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete maintenance for appliance %s: %w", id, err)
		}
		if err := tx.Delete(&model.Contact{}, "appliance_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete contacts for appliance %s: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM subscription_appliances WHERE appliance_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions for appliance %s: %w", id, err)
		}
		res := tx.Delete(&model.Appliance{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete appliance %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("appliance", id)
		}
		return nil
	})
}

// ApplianceStats counts appliances by warranty status as of today.
func (s *gormStore) ApplianceStats(ctx context.Context, today calendar.Date) (model.ApplianceStats, error) {
	var appliances []model.Appliance
	if err := s.db.WithContext(ctx).Select("id", "warranty_expiry").Find(&appliances).Error; err != nil {
		return model.ApplianceStats{}, fmt.Errorf("failed to load appliances for stats: %w", err)
	}
	return model.ComputeStats(appliances, today), nil
}

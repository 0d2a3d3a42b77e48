package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"homebase/internal/apperr"
	"homebase/internal/model"
)

func (s *gormStore) ListContacts(ctx context.Context, applianceID string) ([]model.Contact, error) {
	q := s.db.WithContext(ctx).Model(&model.Contact{})
	if applianceID != "" {
		q = q.Where("appliance_id = ?", applianceID)
	}
	contacts := []model.Contact{}
	if err := q.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *gormStore) GetContact(ctx context.Context, id string) (model.Contact, error) {
	var c model.Contact
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return c, notFound(err, "contact", id)
	}
	return c, nil
}

func (s *gormStore) CreateContact(ctx context.Context, c *model.Contact) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applianceExists(tx, c.ApplianceID); err != nil {
			return err
		}
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("failed to create contact: %w", err)
		}
		return nil
	})
}

func (s *gormStore) UpdateContact(ctx context.Context, id string, p model.ContactPatch) (model.Contact, error) {
	var c model.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return notFound(err, "contact", id)
		}
		if p.ApplianceID != nil && *p.ApplianceID != c.ApplianceID {
			if err := applianceExists(tx, *p.ApplianceID); err != nil {
				return err
			}
		}
		p.Apply(&c)
		if err := c.Validate(); err != nil {
			return err
		}
		if err := tx.Save(&c).Error; err != nil {
			return fmt.Errorf("failed to update contact %s: %w", id, err)
		}
		return nil
	})
	return c, err
}

func (s *gormStore) DeleteContact(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Contact{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("contact", id)
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"homebase/internal/apperr"
)

// Contact is a person or company associated with an appliance.
type Contact struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ApplianceID string    `gorm:"type:uuid;index;not null" json:"applianceId"`
	ContactName string    `gorm:"size:255;not null" json:"contactName"`
	Phone       string    `gorm:"size:50" json:"phone,omitempty"`
	Email       string    `gorm:"size:255" json:"email,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Appliance *Appliance `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c Contact) RecordID() string     { return c.ID }
func (c Contact) ApplianceRef() string { return c.ApplianceID }

func (c *Contact) Stamp(id string, now time.Time) {
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
}

func (c *Contact) Touch(now time.Time) { c.UpdatedAt = now }

// Validate rejects a contact left with neither a phone number nor an email.
func (c Contact) Validate() error {
	if c.Phone == "" && c.Email == "" {
		return &apperr.ValidationError{Fields: []apperr.FieldError{
			{Field: "phone", Message: "is required when email is empty"},
		}}
	}
	return nil
}

// ContactInput is the body of a create request. At least one of phone and
// email must be given.
type ContactInput struct {
	ApplianceID string `json:"applianceId" binding:"required,uuid"`
	ContactName string `json:"contactName" binding:"required,max=255"`
	Phone       string `json:"phone,omitempty" binding:"required_without=Email,max=50"`
	Email       string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	Notes       string `json:"notes,omitempty"`
}

func (in ContactInput) Contact() Contact {
	return Contact{
		ApplianceID: in.ApplianceID,
		ContactName: in.ContactName,
		Phone:       in.Phone,
		Email:       in.Email,
		Notes:       in.Notes,
	}
}

// ContactPatch is a partial update. Nil fields are left untouched. The patched
// contact must still satisfy Validate.
type ContactPatch struct {
	ApplianceID *string `json:"applianceId,omitempty" binding:"omitempty,uuid"`
	ContactName *string `json:"contactName,omitempty" binding:"omitempty,min=1,max=255"`
	Phone       *string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email|len=0,max=255"`
	Notes       *string `json:"notes,omitempty"`
}

func (p ContactPatch) Apply(c *Contact) {
	setString(&c.ApplianceID, p.ApplianceID)
	setString(&c.ContactName, p.ContactName)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	setString(&c.Notes, p.Notes)
}

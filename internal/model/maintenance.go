package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"homebase/internal/calendar"
)

// MaintenanceTask is a scheduled, possibly recurring, job on an appliance.
type MaintenanceTask struct {
	ID                     string             `gorm:"type:uuid;primaryKey" json:"id"`
	ApplianceID            string             `gorm:"type:uuid;index;not null" json:"applianceId"`
	TaskName               string             `gorm:"size:255;not null" json:"taskName"`
	Date                   calendar.Date      `gorm:"not null" json:"date"`
	Frequency              calendar.Frequency `gorm:"size:50;not null" json:"frequency"`
	ServiceProviderName    string             `gorm:"size:255;not null" json:"serviceProviderName"`
	ServiceProviderContact string             `gorm:"size:255;not null" json:"serviceProviderContact"`
	ReminderDate           calendar.Date      `gorm:"index;not null" json:"reminderDate"`
	Completed              bool               `gorm:"not null" json:"completed"`
	ReminderSentAt         *time.Time         `json:"-"`
	CreatedAt              time.Time          `gorm:"not null" json:"createdAt"`
	UpdatedAt              time.Time          `gorm:"not null" json:"updatedAt"`

	// Associations
	Appliance *Appliance `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (t *MaintenanceTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t MaintenanceTask) RecordID() string     { return t.ID }
func (t MaintenanceTask) ApplianceRef() string { return t.ApplianceID }

func (t *MaintenanceTask) Stamp(id string, now time.Time) {
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
}

func (t *MaintenanceTask) Touch(now time.Time) { t.UpdatedAt = now }

// MaintenanceInput is the body of a create request.
type MaintenanceInput struct {
	ApplianceID            string             `json:"applianceId" binding:"required,uuid"`
	TaskName               string             `json:"taskName" binding:"required,max=255"`
	Date                   calendar.Date      `json:"date" binding:"required"`
	Frequency              calendar.Frequency `json:"frequency" binding:"required,oneof=one-time monthly quarterly bi-yearly yearly"`
	ServiceProviderName    string             `json:"serviceProviderName" binding:"required,max=255"`
	ServiceProviderContact string             `json:"serviceProviderContact" binding:"required,max=255"`
	Completed              bool               `json:"completed"`
}

// Task builds the record described by the input, with its reminder computed.
func (in MaintenanceInput) Task() MaintenanceTask {
	return MaintenanceTask{
		ApplianceID:            in.ApplianceID,
		TaskName:               in.TaskName,
		Date:                   in.Date,
		Frequency:              in.Frequency,
		ServiceProviderName:    in.ServiceProviderName,
		ServiceProviderContact: in.ServiceProviderContact,
		ReminderDate:           calendar.ReminderDate(in.Date, in.Frequency),
		Completed:              in.Completed,
	}
}

// MaintenancePatch is a partial update. Nil fields are left untouched.
type MaintenancePatch struct {
	ApplianceID            *string             `json:"applianceId,omitempty" binding:"omitempty,uuid"`
	TaskName               *string             `json:"taskName,omitempty" binding:"omitempty,min=1,max=255"`
	Date                   *calendar.Date      `json:"date,omitempty"`
	Frequency              *calendar.Frequency `json:"frequency,omitempty" binding:"omitempty,oneof=one-time monthly quarterly bi-yearly yearly"`
	ServiceProviderName    *string             `json:"serviceProviderName,omitempty" binding:"omitempty,min=1,max=255"`
	ServiceProviderContact *string             `json:"serviceProviderContact,omitempty" binding:"omitempty,min=1,max=255"`
	Completed              *bool               `json:"completed,omitempty"`
}

// Apply merges the patch into t and recomputes the reminder date.
func (p MaintenancePatch) Apply(t *MaintenanceTask) {
	setString(&t.ApplianceID, p.ApplianceID)
	setString(&t.TaskName, p.TaskName)
	setString(&t.ServiceProviderName, p.ServiceProviderName)
	setString(&t.ServiceProviderContact, p.ServiceProviderContact)
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Frequency != nil {
		t.Frequency = *p.Frequency
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.ReminderDate = calendar.ReminderDate(t.Date, t.Frequency)
}

// DefaultUpcomingDays is the look-ahead used when no horizon is requested.
const DefaultUpcomingDays = 14

// UpcomingTask is a maintenance task joined with the name of its appliance.
type UpcomingTask struct {
	MaintenanceTask
	ApplianceName string `json:"applianceName"`
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"homebase/internal/calendar"
)

// Appliance is a tracked household appliance and its warranty.
type Appliance struct {
	ID                   string        `gorm:"type:uuid;primaryKey" json:"id"`
	Name                 string        `gorm:"size:255;not null" json:"name"`
	Brand                string        `gorm:"size:255;not null" json:"brand"`
	Model                string        `gorm:"size:255;not null" json:"model"`
	SerialNumber         string        `gorm:"size:255" json:"serialNumber,omitempty"`
	PurchaseDate         calendar.Date `gorm:"not null" json:"purchaseDate"`
	WarrantyPeriodMonths int           `gorm:"not null" json:"warrantyPeriodMonths"`
	WarrantyExpiry       calendar.Date `gorm:"not null;index" json:"warrantyExpiry"`
	PurchaseLocation     string        `gorm:"size:255" json:"purchaseLocation,omitempty"`
	ManualLink           string        `gorm:"type:text" json:"manualLink,omitempty"`
	ReceiptLink          string        `gorm:"type:text" json:"receiptLink,omitempty"`
	CreatedAt            time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt            time.Time     `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *Appliance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a Appliance) RecordID() string     { return a.ID }
func (a Appliance) ApplianceRef() string { return a.ID }

func (a *Appliance) Stamp(id string, now time.Time) {
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
}

func (a *Appliance) Touch(now time.Time) { a.UpdatedAt = now }

// Status is the appliance's warranty status on the given day.
func (a Appliance) Status(today calendar.Date) calendar.WarrantyStatus {
	return calendar.Warranty(a.WarrantyExpiry, today)
}

// ApplianceInput is the body of a create request. The warranty expiry is
// derived, so it is not accepted from callers.
type ApplianceInput struct {
	Name                 string        `json:"name" binding:"required,max=255"`
	Brand                string        `json:"brand" binding:"required,max=255"`
	Model                string        `json:"model" binding:"required,max=255"`
	SerialNumber         string        `json:"serialNumber,omitempty" binding:"max=255"`
	PurchaseDate         calendar.Date `json:"purchaseDate" binding:"required"`
	WarrantyPeriodMonths int           `json:"warrantyPeriodMonths" binding:"gt=0"`
	PurchaseLocation     string        `json:"purchaseLocation,omitempty" binding:"max=255"`
	ManualLink           string        `json:"manualLink,omitempty" binding:"omitempty,url"`
	ReceiptLink          string        `json:"receiptLink,omitempty" binding:"omitempty,url"`
}

// Appliance builds the record described by the input, with its expiry computed.
func (in ApplianceInput) Appliance() Appliance {
	return Appliance{
		Name:                 strings.TrimSpace(in.Name),
		Brand:                strings.TrimSpace(in.Brand),
		Model:                strings.TrimSpace(in.Model),
		SerialNumber:         in.SerialNumber,
		PurchaseDate:         in.PurchaseDate,
		WarrantyPeriodMonths: in.WarrantyPeriodMonths,
		WarrantyExpiry:       calendar.WarrantyExpiry(in.PurchaseDate, in.WarrantyPeriodMonths),
		PurchaseLocation:     in.PurchaseLocation,
		ManualLink:           in.ManualLink,
		ReceiptLink:          in.ReceiptLink,
	}
}

// AppliancePatch is a partial update. Nil fields are left untouched; an empty
// link clears it.
type AppliancePatch struct {
	Name                 *string        `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Brand                *string        `json:"brand,omitempty" binding:"omitempty,min=1,max=255"`
	Model                *string        `json:"model,omitempty" binding:"omitempty,min=1,max=255"`
	SerialNumber         *string        `json:"serialNumber,omitempty" binding:"omitempty,max=255"`
	PurchaseDate         *calendar.Date `json:"purchaseDate,omitempty"`
	WarrantyPeriodMonths *int           `json:"warrantyPeriodMonths,omitempty" binding:"omitempty,gt=0"`
	PurchaseLocation     *string        `json:"purchaseLocation,omitempty" binding:"omitempty,max=255"`
	ManualLink           *string        `json:"manualLink,omitempty" binding:"omitempty,url|len=0"`
	ReceiptLink          *string        `json:"receiptLink,omitempty" binding:"omitempty,url|len=0"`
}

// Apply merges the patch into a and recomputes the warranty expiry.
func (p AppliancePatch) Apply(a *Appliance) {
	setString(&a.Name, p.Name)
	setString(&a.Brand, p.Brand)
	setString(&a.Model, p.Model)
	setString(&a.SerialNumber, p.SerialNumber)
	setString(&a.PurchaseLocation, p.PurchaseLocation)
	setString(&a.ManualLink, p.ManualLink)
	setString(&a.ReceiptLink, p.ReceiptLink)
	if p.PurchaseDate != nil {
		a.PurchaseDate = *p.PurchaseDate
	}
	if p.WarrantyPeriodMonths != nil {
		a.WarrantyPeriodMonths = *p.WarrantyPeriodMonths
	}
	a.WarrantyExpiry = calendar.WarrantyExpiry(a.PurchaseDate, a.WarrantyPeriodMonths)
}

// ApplianceDetail is an appliance together with its dependent records.
type ApplianceDetail struct {
	Appliance
	MaintenanceTasks []MaintenanceTask `json:"maintenanceTasks"`
	Contacts         []Contact         `json:"contacts"`
}

// ApplianceStats counts appliances by warranty status.
type ApplianceStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiringSoon"`
	Expired      int `json:"expired"`
}

// ComputeStats tallies the warranty status of every appliance as of today.
func ComputeStats(appliances []Appliance, today calendar.Date) ApplianceStats {
	stats := ApplianceStats{Total: len(appliances)}
	for _, a := range appliances {
		switch a.Status(today) {
		case calendar.StatusActive:
			stats.Active++
		case calendar.StatusExpiringSoon:
			stats.ExpiringSoon++
		case calendar.StatusExpired:
			stats.Expired++
		}
	}
	return stats
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

package model

import (
	"net/url"
	"strings"

	"homebase/internal/calendar"
)

// ListFilter narrows list queries. Zero values mean "no filter".
type ListFilter struct {
	Search      string `form:"search"`
	Status      string `form:"status" binding:"omitempty,oneof=all active expiring-soon expired"`
	ApplianceID string `form:"applianceId" binding:"omitempty,uuid"`
}

// Query encodes the filter as URL query parameters.
func (f ListFilter) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" && f.Status != "all" {
		q.Set("status", f.Status)
	}
	if f.ApplianceID != "" {
		q.Set("applianceId", f.ApplianceID)
	}
	return q
}

// MatchAppliance applies the search and warranty-status filters to a.
func (f ListFilter) MatchAppliance(a Appliance, today calendar.Date) bool {
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		hay := strings.ToLower(strings.Join([]string{a.Name, a.Brand, a.Model, a.SerialNumber}, "\x00"))
		if !strings.Contains(hay, s) {
			return false
		}
	}
	if f.Status != "" && f.Status != "all" && string(a.Status(today)) != f.Status {
		return false
	}
	return true
}

// MatchOwner applies the appliance filter to a dependent record.
func (f ListFilter) MatchOwner(r Record) bool {
	return f.ApplianceID == "" || r.ApplianceRef() == f.ApplianceID
}

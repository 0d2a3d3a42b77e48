package model

import "time"

// Collection names shared by the REST paths and the local store keys.
const (
	CollectionAppliances  = "appliances"
	CollectionMaintenance = "maintenance"
	CollectionContacts    = "contacts"
)

// Record is implemented by the three tracked entity types.
type Record interface {
	RecordID() string
	// ApplianceRef is the owning appliance, or the record's own id for an Appliance.
	ApplianceRef() string
}

// Stamper is implemented by record pointers so a store can assign identity and timestamps.
type Stamper interface {
	Stamp(id string, now time.Time)
	Touch(now time.Time)
}

// RecordKind is the singular, human-readable name of a collection's records.
func RecordKind(collection string) string {
	switch collection {
	case CollectionAppliances:
		return "appliance"
	case CollectionMaintenance:
		return "maintenance task"
	case CollectionContacts:
		return "contact"
	default:
		return collection
	}
}

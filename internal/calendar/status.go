package calendar

// Frequency is how often a maintenance task recurs.
type Frequency string

const (
	OneTime   Frequency = "one-time"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	BiYearly  Frequency = "bi-yearly"
	Yearly    Frequency = "yearly"
)

// Frequencies lists every accepted frequency.
var Frequencies = []Frequency{OneTime, Monthly, Quarterly, BiYearly, Yearly}

func (f Frequency) Valid() bool {
	for _, v := range Frequencies {
		if f == v {
			return true
		}
	}
	return false
}

// WarrantyStatus is the derived state of an appliance warranty.
type WarrantyStatus string

const (
	StatusActive       WarrantyStatus = "active"
	StatusExpiringSoon WarrantyStatus = "expiring-soon"
	StatusExpired      WarrantyStatus = "expired"
)

// ExpiringSoonDays is the window before expiry in which a warranty counts as expiring soon.
const ExpiringSoonDays = 30

// Warranty classifies an expiry date relative to now:
// expired when expiry <= now, expiring-soon when now < expiry <= now+30d, active otherwise.
func Warranty(expiry, now Date) WarrantyStatus {
	if !expiry.After(now) {
		return StatusExpired
	}
	if !expiry.After(now.AddDays(ExpiringSoonDays)) {
		return StatusExpiringSoon
	}
	return StatusActive
}

// IsUpcoming reports whether now <= reminder <= now+horizonDays.
func IsUpcoming(reminder, now Date, horizonDays int) bool {
	return !reminder.Before(now) && !reminder.After(now.AddDays(horizonDays))
}

// ReminderDate is the next reminder for a task scheduled on date.
// One-time tasks, and any unrecognised frequency, remind on the date itself.
func ReminderDate(date Date, f Frequency) Date {
	switch f {
	case Monthly:
		return date.AddMonths(1)
	case Quarterly:
		return date.AddMonths(3)
	case BiYearly:
		return date.AddMonths(6)
	case Yearly:
		return date.AddYears(1)
	default:
		return date
	}
}

// WarrantyExpiry is purchase plus months calendar months.
func WarrantyExpiry(purchase Date, months int) Date {
	return purchase.AddMonths(months)
}

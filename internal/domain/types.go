package domain

// Activity is a hosted activity owned by the remote catalog. The ID is
// opaque and assigned by the backend.
type Activity struct {
	ID          string
	Name        string
	Description string
	Date        string // calendar day, YYYY-MM-DD
	Hours       float64
	Organiser   string
	Location    string
	TimeSlot    string // free-text interval, e.g. "10:00-14:00"
}

// ActivityDraft carries the fields for a new hosted activity before the
// backend assigns it an identifier.
type ActivityDraft struct {
	Name        string
	Description string
	Date        string
	Hours       float64
	Organiser   string
	Location    string
	TimeSlot    string
}

// Payment is a locally recorded payment. Payments never leave the device.
type Payment struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// VolunteerRecord is the per-user row in the remote volunteer table,
// keyed by email. Rank is assigned server-side and read-only here.
type VolunteerRecord struct {
	ID       string
	FullName string
	Email    string
	Hours    float64
	Rank     string
}

// RankOwner grants access to hosting and deleting catalog activities.
const RankOwner = "Owner"

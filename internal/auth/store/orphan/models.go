package orphan

import "time"

// Record is a profile left behind because the registration saga could not
// roll it back. Operators reconcile these out of band.
type Record struct {
	ProfileID  string    `json:"profile_id"`
	Email      string    `json:"email"`
	Reason     string    `json:"reason"`
	RecordedAt time.Time `json:"recorded_at"`
}

package attendance

// TimeLayout is the second-granularity format records are stamped with.
// The first 10 bytes are the calendar date, which is what the per-day
// uniqueness guard keys on.
const TimeLayout = "2006-01-02 15:04:05"

// Record is a single attendance log entry.
type Record struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Status      string `json:"status"`
	SubmittedAt string `json:"timestamp"` // TimeLayout, server local time
	Address     string `json:"address"`
}

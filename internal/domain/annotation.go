package domain

import "time"

// Status tracks the lifecycle of an assignment. Pending moves to complete once
// and never goes back.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusComplete:
		return true
	}
	return false
}

// Answer is the schema-dependent payload submitted for one assignment.
// Values are ints after validation, or nil for skipped conditional fields.
type Answer map[string]any

// WorkItem is one video clip from the dataset catalog.
type WorkItem struct {
	NarrationID string `json:"narration_id"`
	Narration   string `json:"narration"`
	URL         string `json:"url"`
}

// User is an annotator. The email is the identity used on every assignment.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Assignment pairs one user with one work item.
type Assignment struct {
	UserID      string    `json:"user_id"`
	NarrationID string    `json:"narration_id"`
	Status      Status    `json:"status"`
	Annotation  Answer    `json:"annotation"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsComplete reports whether the assignment holds a submitted answer.
func (a *Assignment) IsComplete() bool {
	return a.Status == StatusComplete && a.Annotation != nil
}

// Progress is a user's completion count out of everything assigned to them.
type Progress struct {
	CompleteCount int `json:"complete_count"`
	AllCount      int `json:"all_count"`
}

// AssignmentDetail is an assignment decorated with its catalog entry and the
// owner's progress at the time of the lookup.
type AssignmentDetail struct {
	Assignment *Assignment `json:"assignment"`
	Item       WorkItem    `json:"item"`
	Progress
}

// AssignmentSummary is the payload-free projection used by list views.
type AssignmentSummary struct {
	NarrationID string `json:"narration_id"`
	Status      Status `json:"status"`
	Narration   string `json:"narration,omitempty"`
}

// StatusCount is one row of a (user_id, status) grouping.
type StatusCount struct {
	UserID string
	Status Status
	Count  int
}

// StatusCounts is the fixed-shape per-user aggregate.
type StatusCounts struct {
	Complete int `json:"complete"`
	Pending  int `json:"pending"`
}

// Total is the number of assignments the counts cover.
func (c StatusCounts) Total() int { return c.Complete + c.Pending }

// ExportRow is one completed assignment flattened for tabular output.
type ExportRow struct {
	UserID      string
	NarrationID string
	Annotation  Answer
}

// SeedUser is an entry of the bulk seed users file.
type SeedUser struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

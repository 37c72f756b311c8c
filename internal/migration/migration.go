package migration

import "time"

// Step is one stop of the legacy-migration wizard. Sessions walk the
// steps strictly in order.
type Step string

const (
	StepConnect  Step = "connect"
	StepAnalyze  Step = "analyze"
	StepMap      Step = "map"
	StepImport   Step = "import"
	StepComplete Step = "complete"
)

// stepOrder drives Advance. The first step runs when the session is
// started, the rest on each subsequent advance.
var stepOrder = []Step{StepConnect, StepAnalyze, StepMap, StepImport, StepComplete}

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// StepResult is the outcome of one finished wizard step.
type StepResult struct {
	Step        Step                   `json:"step"`
	Detail      string                 `json:"detail"`
	Data        map[string]interface{} `json:"data,omitempty"`
	CompletedAt time.Time              `json:"completed_at"`
}

// Session is a single run of the migration wizard. Sessions live in
// memory only; a server restart forgets them and the wizard starts
// over from connect.
type Session struct {
	ID          string
	CompanyID   int64
	StartedByID int64
	SourceName  string
	Step        Step
	Status      SessionStatus
	Results     []StepResult
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// entryCount carries the analyze tally forward to the import step.
	entryCount int
}

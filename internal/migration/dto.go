package migration

import (
	"strings"
	"time"

	"github.com/pricebook-hq/pricebook-api/internal"
)

type StartSessionRequest struct {
	SourceName string `json:"source_name"`
}

func (r *StartSessionRequest) Validate() error {
	if strings.TrimSpace(r.SourceName) == "" {
		return internal.NewValidationFieldError("source_name", "source name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SessionResponse struct {
	ID         string       `json:"id"`
	CompanyID  int64        `json:"company_id"`
	SourceName string       `json:"source_name"`
	Step       string       `json:"step"`
	Status     string       `json:"status"`
	Results    []StepResult `json:"results"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func SessionToResponse(session *Session) *SessionResponse {
	return &SessionResponse{
		ID:         session.ID,
		CompanyID:  session.CompanyID,
		SourceName: session.SourceName,
		Step:       string(session.Step),
		Status:     string(session.Status),
		Results:    session.Results,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	}
}

package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pricebook-hq/pricebook-api/internal"
	"github.com/pricebook-hq/pricebook-api/internal/core/events"
)

// legacyFieldMappings is the canned column mapping the wizard reports
// during the map step. The simulated source always has these columns.
var legacyFieldMappings = map[string]string{
	"item_name":    "name",
	"manufacturer": "maker",
	"model_number": "model_no",
	"low_price":    "price_low",
	"high_price":   "price_high",
	"description":  "notes",
}

// Service walks migration sessions through the wizard steps. The
// steps are simulated: no legacy system is contacted and no catalog
// rows are written. Sessions are held in memory only.
type Service struct {
	eventBus *events.EventBus
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(eventBus *events.EventBus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		eventBus: eventBus,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// StartSession opens a new wizard run and performs the connect step.
func (s *Service) StartSession(companyID, startedByID int64, dto *StartSessionRequest) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		StartedByID: startedByID,
		SourceName:  dto.SourceName,
		Step:        StepConnect,
		Status:      SessionStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.runStep(session, StepConnect)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("migration session started",
		"session_id", session.ID,
		"company_id", companyID,
		"source", dto.SourceName)

	return s.snapshot(session), nil
}

// AdvanceSession runs the next wizard step. Advancing a completed
// session is rejected.
func (s *Service) AdvanceSession(sessionID string, companyID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.CompanyID != companyID {
		return nil, internal.ErrSessionNotFound
	}
	if session.Status == SessionStatusCompleted {
		return nil, internal.ErrSessionComplete
	}

	next := nextStep(session.Step)
	s.runStep(session, next)
	session.Step = next
	session.UpdatedAt = time.Now()

	if next == StepComplete {
		session.Status = SessionStatusCompleted
		if s.eventBus != nil {
			event := events.NewMigrationCompletedEvent(session.ID, session.CompanyID, session.entryCount)
			if err := s.eventBus.Publish(context.Background(), event); err != nil {
				s.logger.Error("failed to publish migration completed event",
					"session_id", session.ID, "error", err)
			}
		}
		s.logger.Info("migration session completed",
			"session_id", session.ID,
			"company_id", session.CompanyID,
			"imported", session.entryCount)
	}

	return s.snapshot(session), nil
}

// GetSession returns the current wizard state. Sessions of other
// companies read as not found.
func (s *Service) GetSession(sessionID string, companyID int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.CompanyID != companyID {
		return nil, internal.ErrSessionNotFound
	}
	return s.snapshot(session), nil
}

// AbortSession discards the session outright. A new run starts over
// from connect.
func (s *Service) AbortSession(sessionID string, companyID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.CompanyID != companyID {
		return internal.ErrSessionNotFound
	}

	delete(s.sessions, sessionID)
	s.logger.Info("migration session aborted",
		"session_id", sessionID,
		"company_id", companyID,
		"step", session.Step)
	return nil
}

// runStep appends the canned result for one step. Results are
// deterministic so repeated wizard runs report the same inventory.
func (s *Service) runStep(session *Session, step Step) {
	result := StepResult{Step: step, CompletedAt: time.Now()}

	switch step {
	case StepConnect:
		result.Detail = "Connected to legacy source"
		result.Data = map[string]interface{}{
			"source":         session.SourceName,
			"schema_version": "legacy-2.4",
		}
	case StepAnalyze:
		entries, categories, tags := analyzeCounts(session.CompanyID)
		session.entryCount = entries
		result.Detail = "Analyzed legacy records"
		result.Data = map[string]interface{}{
			"entries":    entries,
			"categories": categories,
			"tags":       tags,
		}
	case StepMap:
		result.Detail = fmt.Sprintf("Mapped %d legacy fields", len(legacyFieldMappings))
		result.Data = map[string]interface{}{
			"mappings": legacyFieldMappings,
		}
	case StepImport:
		result.Detail = fmt.Sprintf("Imported %d legacy entries", session.entryCount)
		result.Data = map[string]interface{}{
			"imported": session.entryCount,
		}
	case StepComplete:
		result.Detail = "Migration finished"
	}

	session.Results = append(session.Results, result)
}

// analyzeCounts synthesizes a legacy inventory from the company id so
// every run over the same company reports identical numbers.
func analyzeCounts(companyID int64) (entries, categories, tags int) {
	entries = int(40 + companyID%9*25)
	categories = int(3 + companyID%4)
	tags = int(5 + companyID%6)
	return entries, categories, tags
}

func nextStep(current Step) Step {
	for i, step := range stepOrder {
		if step == current && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return StepComplete
}

// snapshot copies the session so callers never share the slice the
// service keeps mutating.
func (s *Service) snapshot(session *Session) *Session {
	copied := *session
	copied.Results = make([]StepResult, len(session.Results))
	copy(copied.Results, session.Results)
	return &copied
}

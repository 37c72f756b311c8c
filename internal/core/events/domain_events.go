package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRoleAssigned       = "rbac.role_assigned"
	EventTypeRoleRevoked        = "rbac.role_revoked"
	EventTypeImportCompleted    = "catalog.import_completed"
	EventTypeMigrationCompleted = "migration.completed"
)

type RoleAssignedEvent struct {
	BaseEvent
	UserID       int64  `json:"user_id"`
	RoleID       int64  `json:"role_id"`
	CompanyID    int64  `json:"company_id"`
	AssignedByID *int64 `json:"assigned_by_id,omitempty"`
}

func NewRoleAssignedEvent(userID, roleID, companyID int64, assignedBy *int64) *RoleAssignedEvent {
	return &RoleAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRoleAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"role_id":    roleID,
				"company_id": companyID,
			},
		},
		UserID:       userID,
		RoleID:       roleID,
		CompanyID:    companyID,
		AssignedByID: assignedBy,
	}
}

type RoleRevokedEvent struct {
	BaseEvent
	UserID    int64 `json:"user_id"`
	RoleID    int64 `json:"role_id"`
	CompanyID int64 `json:"company_id"`
	// Count carries how many assignments were removed, more than one
	// only for revoke-all.
	Count int `json:"count"`
}

func NewRoleRevokedEvent(userID, roleID, companyID int64, count int) *RoleRevokedEvent {
	return &RoleRevokedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRoleRevoked,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"role_id":    roleID,
				"company_id": companyID,
				"count":      count,
			},
		},
		UserID:    userID,
		RoleID:    roleID,
		CompanyID: companyID,
		Count:     count,
	}
}

type ImportCompletedEvent struct {
	BaseEvent
	JobID     string `json:"job_id"`
	CompanyID int64  `json:"company_id"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Failed    int    `json:"failed"`
}

func NewImportCompletedEvent(jobID string, companyID int64, created, updated, failed int) *ImportCompletedEvent {
	return &ImportCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeImportCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"job_id":     jobID,
				"company_id": companyID,
				"created":    created,
				"updated":    updated,
				"failed":     failed,
			},
		},
		JobID:     jobID,
		CompanyID: companyID,
		Created:   created,
		Updated:   updated,
		Failed:    failed,
	}
}

type MigrationCompletedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	CompanyID int64  `json:"company_id"`
	Imported  int    `json:"imported"`
}

func NewMigrationCompletedEvent(sessionID string, companyID int64, imported int) *MigrationCompletedEvent {
	return &MigrationCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMigrationCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_id": sessionID,
				"company_id": companyID,
				"imported":   imported,
			},
		},
		SessionID: sessionID,
		CompanyID: companyID,
		Imported:  imported,
	}
}

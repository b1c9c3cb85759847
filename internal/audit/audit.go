// Package audit records authentication and account administration events.
//
// Events are queued on a bounded channel and written by one goroutine, first
// to the audit_logs table and then to any configured sinks (MQTT, InfluxDB).
// Recording never blocks a request: when the queue is full the event is
// dropped and a warning logged. Passwords and tokens are never recorded.
package audit

import "time"

// Action names an audited event.
type Action string

const (
	ActionLoginSucceeded     Action = "login_succeeded"
	ActionLoginFailed        Action = "login_failed"
	ActionAccessDenied       Action = "access_denied"
	ActionAccountCreated     Action = "account_created"
	ActionAccountUpdated     Action = "account_updated"
	ActionAccountDeactivated Action = "account_deactivated"
)

// Entity types.
const (
	EntityAccount = "account"
	EntityRoute   = "route"
)

// AuditLog is one audit trail entry.
type AuditLog struct { //nolint:revive // audit.AuditLog reads better than audit.Log at call sites
	ID         string         `json:"id"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId,omitempty"`
	AccountID  string         `json:"accountId,omitempty"`
	Source     string         `json:"source"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

package domain

import "time"

// Audit action tags. One tag per sensitive operation.
const (
	ActionLogin              = "LOGIN"
	ActionLoginFailed        = "LOGIN_FAILED"
	ActionPasswordChange     = "PASSWORD_CHANGE"
	ActionProfileUpdate      = "PROFILE_UPDATE"
	ActionTwoFactorEnable    = "2FA_ENABLE"
	ActionTwoFactorDisable   = "2FA_DISABLE"
	ActionApptAssign         = "APPT_ASSIGN"
	ActionApptCreateAuto     = "APPT_CREATE_AUTO"
	ActionRecordCreateAuto   = "RECORD_CREATE_AUTO"
	ActionRecordCreateManual = "RECORD_CREATE_MANUAL"
	ActionUserCreate         = "USER_CREATE"
	ActionUserUpdate         = "USER_UPDATE"
	ActionUserDelete         = "USER_DELETE"
	ActionPasswordReset      = "PASSWORD_RESET_REQUEST"
)

// AuditEntry is an append-only compliance record. Hard-delete is not allowed.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"user_email"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// PasswordRequestStatus tracks the admin-resolved reset workflow.
type PasswordRequestStatus string

const (
	PasswordRequestPending  PasswordRequestStatus = "Pending"
	PasswordRequestResolved PasswordRequestStatus = "Resolved"
)

// PasswordRequest is a client-initiated reset request, resolved manually
// by an admin.
type PasswordRequest struct {
	ID          string                `json:"id"`
	Email       string                `json:"email"`
	Status      PasswordRequestStatus `json:"status"`
	RequestDate time.Time             `json:"request_date"`
}

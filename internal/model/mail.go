package model

import "context"

// EmailKind selects the notification template.
type EmailKind string

const (
	EmailVerificationCode EmailKind = "verification_code"
	EmailResetCode        EmailKind = "reset_code"
	EmailPasswordChanged  EmailKind = "password_changed"
	EmailAccountDeleted   EmailKind = "account_deleted"
	EmailLoginAlert       EmailKind = "login_alert"
	EmailNewDevice        EmailKind = "new_device"
)

// Email is a queued outbound notification.
type Email struct {
	Kind EmailKind
	To   string

	// Kind-specific payload fields.
	Code   int
	IP     string
	Device string
}

// Mailer delivers a single email synchronously.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Notifier dispatches emails without blocking the caller. Delivery failures
// never propagate back to the request that enqueued them.
type Notifier interface {
	Enqueue(email Email)
}

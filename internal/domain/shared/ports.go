package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Workflows take it as a dependency so
// review timestamps and access windows can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// ReceiptRef is an opaque reference to an uploaded deposit receipt.
type ReceiptRef string

// IsZero reports whether no receipt was supplied.
func (r ReceiptRef) IsZero() bool { return r == "" }

// ReceiptStore keeps receipt artifacts. The workflows only check presence.
type ReceiptStore interface {
	Store(ctx context.Context, data []byte, contentType string) (ReceiptRef, error)
	Exists(ctx context.Context, ref ReceiptRef) (bool, error)
}

// NotificationSink delivers an in-app notification to an actor.
type NotificationSink interface {
	Notify(ctx context.Context, actorID uuid.UUID, title, body string) error
}

// EmailSink delivers a plain-text email.
type EmailSink interface {
	Send(ctx context.Context, to, subject, body string) error
}

// TxManager runs fn inside a single storage transaction. Repositories
// called with the ctx passed to fn join that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

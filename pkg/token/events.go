package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// TokenGenerated is published after every successful GetToken
type TokenGenerated struct {
	ID        uuid.UUID
	UserID    int64
	ServiceID int64
	Service   string
	Reused    bool
	// CallerID is the JWT subject, or "system" for operator calls
	CallerID string
	Time     time.Time
}

// EventPublisher receives issuance events. Publishing must not fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, event TokenGenerated)
}

// SlogPublisher writes events to the default logger
type SlogPublisher struct{}

func (SlogPublisher) Publish(ctx context.Context, e TokenGenerated) {
	slog.InfoContext(ctx, "token generated",
		"eventID", e.ID,
		"userID", e.UserID,
		"serviceID", e.ServiceID,
		"service", e.Service,
		"reused", e.Reused,
		"callerID", e.CallerID,
		"time", e.Time,
	)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TokenGenerated) {}

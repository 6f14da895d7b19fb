// Package credential issues long-lived service tokens for an identity.
//
// Issue returns the newest still-valid permanent token the identity holds for
// the service, or mints one. Stale tokens met on the way are deleted; see
// SweepAndSelect for the rules.
package credential

import (
	"context"
	"time"
)

// TypePermanent is the only token type that takes part in reuse
const TypePermanent = "permanent"

// Credential is one issued token
type Credential struct {
	ID        int64
	Token     string
	UserID    int64
	ServiceID int64
	Type      string
	// SID binds the token to a login session
	SID           string
	IPRestriction string
	// ValidUntil is zero for tokens that never expire
	ValidUntil time.Time
	CreatorID  int64
	CreatedAt  time.Time
}

// Repository stores issued credentials. Credentials are never updated in place.
type Repository interface {
	// ListPermanent returns permanent credentials for the pair, oldest first
	ListPermanent(ctx context.Context, userID, serviceID int64) ([]Credential, error)
	// Delete removes the permanent credential with this token
	Delete(ctx context.Context, token string) error
	Create(ctx context.Context, c Credential) (Credential, error)
}

// Result is what Issue hands back to the caller
type Result struct {
	Token      string
	ValidUntil time.Time
	ServiceID  int64
	Reused     bool
}

// ExpiresAt returns nil for tokens that never expire
func (r Result) ExpiresAt() *time.Time {
	if r.ValidUntil.IsZero() {
		return nil
	}
	t := r.ValidUntil
	return &t
}

// Redact shortens a token for logs
func Redact(token string) string {
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "..."
}

type remoteAddrKey struct{}

// WithRemoteAddr records the caller's network address for IP-restricted tokens
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey{}, addr)
}

// RemoteAddr returns the address stored by WithRemoteAddr, or ""
func RemoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(remoteAddrKey{}).(string)
	return addr
}

package credential

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Reason says why a credential was swept
type Reason string

const (
	ReasonSessionBound      Reason = "session_bound"
	ReasonLifetimeTightened Reason = "lifetime_tightened"
	ReasonExpired           Reason = "expired"
	ReasonIPMismatch        Reason = "ip_mismatch"
)

// Policy is the state a sweep judges candidates against
type Policy struct {
	Now        time.Time
	Lifetime   time.Duration
	RemoteAddr string
}

// StaleReason returns why c can no longer be handed out, if it cannot
func StaleReason(c Credential, p Policy) (Reason, bool) {
	switch {
	case c.SID != "":
		return ReasonSessionBound, true
	case c.ValidUntil.IsZero() && p.Lifetime > 0:
		return ReasonLifetimeTightened, true
	case !c.ValidUntil.IsZero() && c.ValidUntil.Before(p.Now):
		return ReasonExpired, true
	case c.IPRestriction != "" && !AddressInSubnet(p.RemoteAddr, c.IPRestriction):
		return ReasonIPMismatch, true
	}
	return "", false
}

// Swept records a credential deleted by a sweep
type Swept struct {
	Credential Credential
	Reason     Reason
}

// SweepAndSelect deletes every stale candidate and returns the last surviving
// one, or nil. Candidates must be oldest first; survivors keep that order.
// Each delete happens before the next candidate is judged. Nothing is locked,
// so two concurrent sweeps for the same pair may both find no survivor.
func SweepAndSelect(ctx context.Context, repo Repository, candidates []Credential, p Policy) (*Credential, []Swept, error) {
	var (
		survivors []Credential
		swept     []Swept
	)

	for _, c := range candidates {
		reason, stale := StaleReason(c, p)
		if !stale {
			survivors = append(survivors, c)
			continue
		}

		if err := repo.Delete(ctx, c.Token); err != nil {
			return nil, swept, fmt.Errorf("failed to delete stale credential: %w", err)
		}
		slog.Debug("swept credential", "token", Redact(c.Token), "userID", c.UserID, "serviceID", c.ServiceID, "reason", reason)
		swept = append(swept, Swept{Credential: c, Reason: reason})
	}

	if len(survivors) == 0 {
		return nil, swept, nil
	}
	selected := survivors[len(survivors)-1]
	return &selected, swept, nil
}

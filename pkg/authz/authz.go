// Package authz decides whether the current caller holds a capability for a
// target identity.
package authz

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/tendant/simple-token/pkg/client"
	"github.com/tendant/simple-token/pkg/config"
	"github.com/tendant/simple-token/pkg/errors"
)

const (
	// CapabilityGenerateToken allows issuing tokens on behalf of an identity
	CapabilityGenerateToken = "token:generatetoken"
	// CapabilityConfigure allows reading the field and service catalogs
	CapabilityConfigure = "token:configure"
)

// Authorizer checks a capability scoped to an identity. Implementations return
// a MISSING_CAPABILITY error when the caller lacks it.
type Authorizer interface {
	Require(ctx context.Context, capability string, identityID int64) error
}

type systemKey struct{}

// WithSystemCaller marks ctx as an operator acting outside any JWT, such as tokenctl
func WithSystemCaller(ctx context.Context) context.Context {
	return context.WithValue(ctx, systemKey{}, true)
}

// IsSystemCaller reports whether ctx was marked by WithSystemCaller
func IsSystemCaller(ctx context.Context) bool {
	v, _ := ctx.Value(systemKey{}).(bool)
	return v
}

// RoleAuthorizer grants capabilities from the caller's JWT roles
type RoleAuthorizer struct {
	roles     map[string][]string
	allowSelf bool
}

func NewRoleAuthorizer(cfg config.AuthzConfig) *RoleAuthorizer {
	return &RoleAuthorizer{
		roles: map[string][]string{
			CapabilityGenerateToken: config.ParseRoleNames(cfg.GeneratorRoles),
			CapabilityConfigure:     config.ParseRoleNames(cfg.ConfigureRoles),
		},
		allowSelf: cfg.AllowSelf,
	}
}

func (a *RoleAuthorizer) Require(ctx context.Context, capability string, identityID int64) error {
	if IsSystemCaller(ctx) {
		return nil
	}

	caller, ok := client.GetAuthUser(ctx)
	if !ok {
		slog.Warn("capability check without caller", "capability", capability, "identityID", identityID)
		return errors.MissingCapability(capability)
	}

	if config.HasAnyRole(caller.ExtraClaims.Roles, a.roles[capability]) {
		return nil
	}

	if a.allowSelf && capability == CapabilityGenerateToken && caller.UserId == strconv.FormatInt(identityID, 10) {
		return nil
	}

	slog.Warn("caller lacks capability", "caller", caller, "capability", capability, "identityID", identityID)
	return errors.MissingCapability(capability)
}

// AllowAll grants every capability
type AllowAll struct{}

func (AllowAll) Require(context.Context, string, int64) error {
	return nil
}

// Package services reads the external service registry and the list of
// services an administrator has enabled for token issuance.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tendant/simple-token/pkg/settings"
)

// Service is an issuable service from the registry
type Service struct {
	ID                 int64
	Shortname          string
	Name               string
	Enabled            bool
	RequiredCapability string
	RestrictedUsers    bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Repository lists registered services ordered by name
type Repository interface {
	ListServices(ctx context.Context) ([]Service, error)
}

// Catalog answers service questions for one settings snapshot
type Catalog struct {
	repo     Repository
	snapshot settings.Snapshot
}

func NewCatalog(repo Repository, snapshot settings.Snapshot) *Catalog {
	return &Catalog{repo: repo, snapshot: snapshot}
}

// ListSupported returns services that have a shortname, ordered by name
func (c *Catalog) ListSupported(ctx context.Context) ([]Service, error) {
	all, err := c.repo.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	supported := make([]Service, 0, len(all))
	for _, s := range all {
		if s.Shortname != "" {
			supported = append(supported, s)
		}
	}
	return supported, nil
}

// SupportedServices returns services that have a shortname keyed by shortname
func (c *Catalog) SupportedServices(ctx context.Context) (map[string]Service, error) {
	list, err := c.ListSupported(ctx)
	if err != nil {
		return nil, err
	}

	byShortname := make(map[string]Service, len(list))
	for _, s := range list {
		byShortname[s.Shortname] = s
	}
	return byShortname, nil
}

// EnabledServices returns the configured service shortnames
func (c *Catalog) EnabledServices() []string {
	enabled := make([]string, len(c.snapshot.Services))
	copy(enabled, c.snapshot.Services)
	return enabled
}

// IsServiceEnabled is an exact membership test. Caller input is not trimmed,
// so " fake WS" does not match a configured "fake WS".
func (c *Catalog) IsServiceEnabled(shortname string) bool {
	for _, s := range c.snapshot.Services {
		if s == shortname {
			return true
		}
	}
	return false
}

// ServiceByShortname returns nil when no supported service has that shortname
func (c *Catalog) ServiceByShortname(ctx context.Context, shortname string) (*Service, error) {
	supported, err := c.SupportedServices(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := supported[shortname]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

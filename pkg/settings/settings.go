// Package settings holds the four administrator settings the token engines
// read: enabled auth methods, enabled services, enabled match fields and the
// token lifetime.
//
// Values come from a Store. Load reads every value once and returns a
// Snapshot; engines are built from the Snapshot for the duration of one
// request and never go back to the store.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/simple-token/pkg/config"
)

// Store reads raw setting values by name
type Store interface {
	// Get returns the value and whether the store holds one
	Get(ctx context.Context, name string) (string, bool, error)
}

// Snapshot is the parsed settings for one request
type Snapshot struct {
	AuthMethods     []string
	Services        []string
	UserMatchFields []string
	// TokenLifetime of zero means tokens never expire
	TokenLifetime time.Duration
}

// Load reads all settings from the store and parses them
func Load(ctx context.Context, store Store) (Snapshot, error) {
	raw := make(map[string]string, 4)
	for _, name := range []string{
		config.SettingAuthMethods,
		config.SettingServices,
		config.SettingUserMatchFields,
		config.SettingTokenLifetime,
	} {
		value, _, err := store.Get(ctx, name)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to read setting %s: %w", name, err)
		}
		raw[name] = value
	}

	lifetime, err := ParseLifetime(raw[config.SettingTokenLifetime])
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		AuthMethods:     config.ParseList(raw[config.SettingAuthMethods]),
		Services:        config.ParseList(raw[config.SettingServices]),
		UserMatchFields: config.ParseList(raw[config.SettingUserMatchFields]),
		TokenLifetime:   lifetime,
	}, nil
}

// ParseLifetime parses a lifetime in whole seconds. Empty and negative values mean no expiry.
func ParseLifetime(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", config.SettingTokenLifetime, value, err)
	}
	if seconds < 0 {
		return 0, nil
	}
	return time.Duration(seconds) * time.Second, nil
}

// MapStore serves settings from a map, typically built from the environment
type MapStore map[string]string

func (m MapStore) Get(_ context.Context, name string) (string, bool, error) {
	value, ok := m[name]
	return value, ok, nil
}

// Layered consults each store in order; the first one holding a value wins
type Layered []Store

func (l Layered) Get(ctx context.Context, name string) (string, bool, error) {
	for _, store := range l {
		value, ok, err := store.Get(ctx, name)
		if err != nil {
			return "", false, err
		}
		if ok {
			return value, true, nil
		}
	}
	return "", false, nil
}

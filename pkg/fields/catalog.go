// Package fields knows which identity attributes exist and which of them an
// administrator has enabled for matching identities.
package fields

import (
	"context"
	"fmt"

	"github.com/tendant/simple-token/pkg/settings"
)

// SupportedDatatype is the only custom field type that can be matched
const SupportedDatatype = "text"

// ProfileField is a custom profile field definition
type ProfileField struct {
	ID          int64
	Shortname   string
	Name        string
	Datatype    string
	ForceUnique bool
	SortOrder   int
}

// ProfileFieldSource lists custom profile field definitions in declaration order
type ProfileFieldSource interface {
	ListProfileFields(ctx context.Context) ([]ProfileField, error)
}

// Descriptor is a supported field and its display label
type Descriptor struct {
	Key   Key
	Label string
}

// Catalog answers field questions for one settings snapshot
type Catalog struct {
	source   ProfileFieldSource
	snapshot settings.Snapshot
}

// NewCatalog creates a catalog. A nil source means no custom fields exist.
func NewCatalog(source ProfileFieldSource, snapshot settings.Snapshot) *Catalog {
	return &Catalog{source: source, snapshot: snapshot}
}

// SupportedFields returns the built-in fields followed by every unique text
// profile field.
func (c *Catalog) SupportedFields(ctx context.Context) ([]Descriptor, error) {
	result := make([]Descriptor, 0, len(BuiltIns))
	for _, b := range BuiltIns {
		result = append(result, Descriptor{Key: BuiltInKey(b), Label: b.String()})
	}

	if c.source == nil {
		return result, nil
	}

	custom, err := c.source.ListProfileFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile fields: %w", err)
	}
	for _, f := range custom {
		if f.Datatype != SupportedDatatype || !f.ForceUnique {
			continue
		}
		result = append(result, Descriptor{Key: CustomKey(f.Shortname), Label: f.Shortname})
	}
	return result, nil
}

// EnabledFields returns the configured match fields with id always first.
// Entries are not de-duplicated.
func (c *Catalog) EnabledFields() []string {
	enabled := make([]string, 0, len(c.snapshot.UserMatchFields)+1)
	enabled = append(enabled, ID.String())
	return append(enabled, c.snapshot.UserMatchFields...)
}

// IsCustomField reports whether field is not one of the built-in names
func (c *Catalog) IsCustomField(field string) bool {
	return ParseKey(field).Kind() == KindCustom
}

// IsFieldEnabled reports whether field, in either prefixed or bare form, is enabled
func (c *Catalog) IsFieldEnabled(field string) bool {
	normalized := ParseKey(field).String()
	for _, enabled := range c.EnabledFields() {
		if enabled == normalized {
			return true
		}
	}
	return false
}

// EnabledAuthMethods returns the authentication methods identities may use.
// Empty means no identity resolves.
func (c *Catalog) EnabledAuthMethods() []string {
	methods := make([]string, len(c.snapshot.AuthMethods))
	copy(methods, c.snapshot.AuthMethods)
	return methods
}

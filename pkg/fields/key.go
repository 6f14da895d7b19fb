package fields

import "strings"

// CustomPrefix marks a custom profile field in configuration and field keys
const CustomPrefix = "profile_"

// Kind tells built-in and custom keys apart
type Kind int

const (
	KindBuiltIn Kind = iota + 1
	KindCustom
)

// BuiltIn enumerates the fixed identity attributes
type BuiltIn int

const (
	ID BuiltIn = iota + 1
	Username
	Email
	IDNumber
)

var builtInNames = map[BuiltIn]string{
	ID:       "id",
	Username: "username",
	Email:    "email",
	IDNumber: "idnumber",
}

// BuiltIns lists the built-in attributes in display order
var BuiltIns = []BuiltIn{ID, Username, Email, IDNumber}

func (b BuiltIn) String() string {
	return builtInNames[b]
}

// Key identifies a field that identities can be matched by
type Key struct {
	kind    Kind
	builtIn BuiltIn
	name    string
}

// BuiltInKey returns the key of a built-in attribute
func BuiltInKey(b BuiltIn) Key {
	return Key{kind: KindBuiltIn, builtIn: b}
}

// CustomKey returns the key of a custom profile field by short name
func CustomKey(shortname string) Key {
	return Key{kind: KindCustom, name: shortname}
}

// ParseKey classifies a caller-supplied field name. Anything that is not a
// built-in name is a custom field; the profile_ prefix is optional.
func ParseKey(field string) Key {
	for _, b := range BuiltIns {
		if field == b.String() {
			return BuiltInKey(b)
		}
	}
	return CustomKey(strings.TrimPrefix(field, CustomPrefix))
}

func (k Key) Kind() Kind {
	return k.kind
}

// BuiltIn returns the attribute for built-in keys
func (k Key) BuiltIn() (BuiltIn, bool) {
	return k.builtIn, k.kind == KindBuiltIn
}

// CustomName returns the short name for custom keys
func (k Key) CustomName() (string, bool) {
	return k.name, k.kind == KindCustom
}

// CaseSensitive reports whether values are compared exactly.
// Custom fields are; built-in fields are not, except id which compares numerically.
func (k Key) CaseSensitive() bool {
	return k.kind == KindCustom
}

// String returns the configuration form: the built-in name or profile_<shortname>
func (k Key) String() string {
	switch k.kind {
	case KindBuiltIn:
		return k.builtIn.String()
	case KindCustom:
		return CustomPrefix + k.name
	default:
		return ""
	}
}

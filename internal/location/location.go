// Package location canonicalizes free-form city strings so that spelling
// variants of the same place compare equal.
package location

import "strings"

// Unknown is the canonical key for a missing or placeholder location.
const Unknown = "tbd"

type alias struct {
	from string
	to   string
}

// aliases is consulted in order after lowercasing and stripping periods.
var aliases = []alias{
	{"nyc", "new york"},
	{"new york city", "new york"},
	{"milan italy", "milan, italy"},
	{"paris france", "paris"},
	{"tbd", Unknown},
	{"na", Unknown},
	{"-", Unknown},
	{"", Unknown},
}

// Normalize returns the canonical comparison key for raw.
func Normalize(raw string) string {
	key := strings.Join(strings.Fields(raw), " ")
	key = strings.ReplaceAll(strings.ToLower(key), ".", "")
	key = strings.TrimSpace(key)
	for _, a := range aliases {
		if a.from == key {
			return a.to
		}
	}
	return key
}

// IsUnknown reports whether raw has no usable location.
// "unknown" is accepted alongside "tbd" even though no alias produces it.
func IsUnknown(raw string) bool {
	return IsUnknownKey(Normalize(raw))
}

// IsUnknownKey is IsUnknown for an already normalized key.
func IsUnknownKey(key string) bool {
	return key == Unknown || key == "unknown"
}

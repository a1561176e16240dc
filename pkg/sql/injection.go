// Package sql screens user-supplied SQL fragments before they are sent to the backend.
package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a value that matched a SQL injection pattern.
type InjectionCheckResult struct {
	Field       string
	Value       string
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckValue runs libinjection over value. It returns nil for clean or empty
// values. Only fields that end up inside SQL text on the server should be
// checked; passwords and file paths legitimately contain quotes.
//
//	CheckValue("table_name", "orders")                 // nil
//	CheckValue("table_name", "x'; DROP TABLE users--") // Fingerprint "s&1c" or similar
func CheckValue(field, value string) *InjectionCheckResult {
	if value == "" {
		return nil
	}
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		Field:       field,
		Value:       value,
		Fingerprint: string(fingerprint),
	}
}

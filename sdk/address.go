package sdk

import "strings"

// Address is the verified identity of a caller or an account holder. Callers
// reach the engine already authenticated, so nothing here checks signatures.
type Address string

// String returns the literal representation (like user:alice) of the address.
// Example payload: sdk.Address("user:alice").String()
func (a Address) String() string {
	return string(a)
}

// IsValid is a light sanity check: non-empty, no whitespace and no pipe since
// the pipe separates fields in event lines and storage keys.
// Example payload: sdk.Address("user:bob").IsValid()
func (a Address) IsValid() bool {
	s := a.String()
	if s == "" || len(s) > 128 {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n|")
}

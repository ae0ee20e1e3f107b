package types

const redacted = "[REDACTED]"

// SecretString holds credentials (API keys, JWT secrets, tokens). It renders
// as a placeholder through fmt and encoding/json so configuration dumps and
// structured logs never leak it.
type SecretString string

// String implements fmt.Stringer.
func (s SecretString) String() string {
	return redacted
}

// GoString keeps %#v from bypassing String.
func (s SecretString) GoString() string {
	return redacted
}

// MarshalJSON implements json.Marshaler.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Unmask returns the plaintext value. Only call this where the secret is
// handed to a signer or an outbound request.
func (s SecretString) Unmask() string {
	return string(s)
}

// IsEmpty reports whether no secret was configured.
func (s SecretString) IsEmpty() bool {
	return s == ""
}

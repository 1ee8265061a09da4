package types

import "log/slog"

const redacted = "***REDACTED***"

// SecretString holds a credential that must never appear in logs or
// serialized output. fmt, encoding/json, and slog all see the redacted
// placeholder; call Unmask to get the real value when handing it to a
// driver or an Authorization header.
type SecretString string

func (s SecretString) String() string {
	return redacted
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// LogValue keeps the secret out of structured log records.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Unmask returns the raw value. Call sites should be the only places
// the plaintext ever travels.
func (s SecretString) Unmask() string {
	return string(s)
}

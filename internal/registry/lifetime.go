package registry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Lifetime determines how often a binding's implementation is constructed.
type Lifetime int

const (
	// Singleton - one instance per injector, built on first resolution
	Singleton Lifetime = iota

	// Scoped - new instance every resolution
	Scoped
)

// LifetimeError indicates an invalid lifetime value.
type LifetimeError struct {
	Value any
}

func (e LifetimeError) Error() string {
	return fmt.Sprintf("invalid lifetime: %v", e.Value)
}

// String returns the string representation of the Lifetime.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Scoped:
		return "Scoped"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// IsValid checks if the lifetime is valid.
func (l Lifetime) IsValid() bool {
	return l >= Singleton && l <= Scoped
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, LifetimeError{Value: int(l)}
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case
// insensitive.
func (l *Lifetime) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "singleton":
		*l = Singleton
	case "scoped":
		*l = Scoped
	default:
		return LifetimeError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Lifetime) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lifetime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return l.UnmarshalText([]byte(s))
}

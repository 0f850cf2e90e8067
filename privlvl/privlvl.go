// Package privlvl defines the privilege levels a dispatcher checks a
// request against before allowing a register read or write to proceed.
package privlvl

import (
	"fmt"
	"strings"
)

// Level is a totally ordered privilege level. Higher values may perform
// everything a lower value may, plus whatever is gated above it.
type Level uint8

const (
	// Normal is the privilege level an unauthenticated or default caller
	// holds.
	Normal Level = 0

	// Mode1 is the first of three general-purpose elevated modes.
	Mode1 Level = 1

	// Mode2 is the second of three general-purpose elevated modes.
	Mode2 Level = 2

	// Mode3 is the third of three general-purpose elevated modes.
	Mode3 Level = 3

	// Secur gates registers that affect safety or security-relevant state.
	Secur Level = 100

	// Devel is reserved for factory/development tooling.
	Devel Level = 254

	// Undef marks a caller whose privilege could not be established. It
	// is the highest level and Meets orders it like any other, so an
	// Undef caller meets every requirement, and a register that requires
	// Undef is reachable only by an Undef caller.
	Undef Level = 255
)

// String renders the level the way it appears in schema annotations and
// log lines.
func (l Level) String() string {
	switch l {
	case Normal:
		return "NORMAL"
	case Mode1:
		return "MODE1"
	case Mode2:
		return "MODE2"
	case Mode3:
		return "MODE3"
	case Secur:
		return "SECUR"
	case Devel:
		return "DEVEL"
	case Undef:
		return "UNDEF"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// Meets reports whether the caller's level is sufficient to perform an
// operation that requires at least `required`.
func (l Level) Meets(required Level) bool {
	return l >= required
}

// Parse converts a schema annotation value (case-insensitive) to a Level.
// It returns false if the name is not recognized.
func Parse(name string) (Level, bool) {
	switch strings.ToUpper(name) {
	case "NORMAL":
		return Normal, true
	case "MODE1":
		return Mode1, true
	case "MODE2":
		return Mode2, true
	case "MODE3":
		return Mode3, true
	case "SECUR":
		return Secur, true
	case "DEVEL":
		return Devel, true
	case "UNDEF":
		return Undef, true
	default:
		return 0, false
	}
}

// Package errs defines the stable error-kind taxonomy shared by every
// layer of the RNG subsystem (fortuna, entropy, schedule, drbg,
// cryptorng, process, kernel). Kind values are part of the API surface
// and must not be renumbered.
package errs

import "fmt"

// Kind is a stable, small integer identifying a class of failure.
// Values must never be renumbered once released.
type Kind int

const (
	// OK is the zero value; it is never attached to a non-nil error.
	OK Kind = iota
	// NotSeeded means generate was called before the generator was
	// seeded, or a MUST_RESEED could not be satisfied.
	NotSeeded
	// OutOfEntropy means the entropy source has nothing to give right now.
	// It is advisory and may be handled without failing the caller.
	OutOfEntropy
	// Config means invalid parameters were supplied at init time.
	Config
	// Internal means an invariant was violated.
	Internal
	// Parameter means the caller passed an invalid argument.
	Parameter
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case NotSeeded:
		return "rng not seeded"
	case OutOfEntropy:
		return "out of entropy"
	case Config:
		return "invalid configuration"
	case Internal:
		return "internal invariant violation"
	case Parameter:
		return "invalid parameter"
	default:
		return "unknown error kind"
	}
}

// Error wraps an underlying cause with a stable Kind and the operation
// that produced it, so callers can match on Kind with errors.Is while
// still seeing the concrete cause with errors.Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind so errors.Is(err, errs.NotSeededErr)
// style sentinels work across package boundaries.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error for the given kind and operation, optionally
// wrapping a lower-level cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinel instances usable with errors.Is for a bare kind check, e.g.
// errors.Is(err, errs.NotSeededErr).
var (
	NotSeededErr    = &Error{Kind: NotSeeded}
	OutOfEntropyErr = &Error{Kind: OutOfEntropy}
	ConfigErr       = &Error{Kind: Config}
	InternalErr     = &Error{Kind: Internal}
	ParameterErr    = &Error{Kind: Parameter}
)

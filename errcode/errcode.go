package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"
	InvalidConfig Code = "invalid_config"

	// Fatal bring-up failure; callers halt.
	InitFailed Code = "init_failed"

	UnknownBus     Code = "unknown_bus"
	UnknownPin     Code = "unknown_pin"
	SensorDisabled Code = "sensor_disabled"
	ReadFailed     Code = "read_failed"
	Timeout        Code = "timeout"
	Closed         Code = "closed"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap builds an *E, or returns nil when err is nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return Of(u.Unwrap())
	}
	return Error
}

// IsFatal reports whether err should halt the device.
func IsFatal(err error) bool { return Of(err) == InitFailed }

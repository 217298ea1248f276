package chat

import "errors"

var (
	// ErrNoDocument rejects a form submission before any reference document
	// has been attached.
	ErrNoDocument = errors.New("no intervention grid has been uploaded")

	// ErrEmptySearchQuery rejects a search directive that carries no query
	// text after the directive words are stripped.
	ErrEmptySearchQuery = errors.New("search query is empty")

	// ErrMissingAPIKey halts startup when the model credential is absent.
	ErrMissingAPIKey = errors.New("GOOGLE_API_KEY is not set")
)

// PreconditionError reports input rejected before any turn was created or
// any collaborator was called. The transcript is untouched.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string { return e.Err.Error() }
func (e *PreconditionError) Unwrap() error { return e.Err }

func NewPreconditionError(err error) error {
	return &PreconditionError{Err: err}
}

// TransportError reports a failed model or search call. The in-flight user
// turn has already been rolled back by the time this is returned.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

func NewTransportError(err error) error {
	return &TransportError{Err: err}
}

// SessionInitError reports a failed session creation or seeding. The session
// handle is left absent so the next attempt recreates it from scratch.
type SessionInitError struct {
	Err error
}

func (e *SessionInitError) Error() string { return e.Err.Error() }
func (e *SessionInitError) Unwrap() error { return e.Err }

func NewSessionInitError(err error) error {
	return &SessionInitError{Err: err}
}

// ConfigurationError reports degraded or missing configuration, such as
// unreadable system instructions. Instructions degrade with a warning;
// missing credentials are fatal at startup instead.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

func NewConfigurationError(err error) error {
	return &ConfigurationError{Err: err}
}

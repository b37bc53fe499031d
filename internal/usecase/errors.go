package usecase

// ValidationError reports malformed creation input.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// InvalidTransitionError reports an unrecognized or disallowed status command.
type InvalidTransitionError string

func (e InvalidTransitionError) Error() string { return string(e) }

type NotFoundError string

func (e NotFoundError) Error() string { return string(e) + " not found" }

// UpstreamFailure wraps a failure reported by a persistence collaborator.
// The core never retries; callers own all recovery.
type UpstreamFailure struct {
	Op  string
	Err error
}

func (e *UpstreamFailure) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *UpstreamFailure) Unwrap() error { return e.Err }

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamFailure{Op: op, Err: err}
}

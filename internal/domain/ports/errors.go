package ports

import "errors"

// Error kinds surfaced by the query engine and its collaborators.
// Callers match them with errors.Is or classify them with KindOf.
var (
	// ErrInvalidArgument marks malformed or out-of-range input. It is always
	// raised before any traversal or query work starts.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAmbiguousMatch is returned when a name resolves to several people.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrNotFound is returned by lookups that resolve to nothing.
	ErrNotFound = errors.New("not found")

	// ErrDataIntegrity is returned when stored data is structurally invalid,
	// such as an edge pointing at a person that does not exist.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrCollaboratorUnavailable wraps storage access failures.
	ErrCollaboratorUnavailable = errors.New("storage unavailable")

	// ErrTooManyParents is returned when a child already has two parents.
	ErrTooManyParents error = &kindError{kind: ErrInvalidArgument, msg: "2 parents already exist for child"}

	// ErrDuplicate is returned when a unique value is recorded twice.
	ErrDuplicate error = &kindError{kind: ErrInvalidArgument, msg: "already exists"}

	// ErrCycle is returned when an edge would make a person their own ancestor.
	ErrCycle error = &kindError{kind: ErrInvalidArgument, msg: "edge would create a cycle"}
)

// kindError is a specific error that also matches its broader kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Kind is the tagged classification of an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindAmbiguousMatch
	KindNotFound
	KindDataIntegrity
	KindCollaboratorUnavailable
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindAmbiguousMatch:
		return "AmbiguousMatch"
	case KindNotFound:
		return "NotFound"
	case KindDataIntegrity:
		return "DataIntegrityError"
	case KindCollaboratorUnavailable:
		return "CollaboratorUnavailable"
	default:
		return "Unknown"
	}
}

// KindOf classifies err. Nil errors and unclassified errors are KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAmbiguousMatch):
		return KindAmbiguousMatch
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDataIntegrity):
		return KindDataIntegrity
	case errors.Is(err, ErrCollaboratorUnavailable):
		return KindCollaboratorUnavailable
	default:
		return KindUnknown
	}
}

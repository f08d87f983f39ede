package di

import (
	"errors"
	"strings"
)

// Error kinds. Every error produced by the container itself is a
// *DependencyError matching exactly one of these via errors.Is. Errors
// returned by user-supplied factories and lifecycle hooks propagate verbatim
// and match none of them.
var (
	// ErrCircularDependency is reported when a token transitively requests
	// itself within a single resolution call chain.
	ErrCircularDependency = errors.New("circular dependency")

	// ErrNoProvider is reported when a non-constructor token has no
	// registered provider.
	ErrNoProvider = errors.New("no provider found")

	// ErrMissingDependencyToken is reported during class instantiation when
	// a constructor parameter has neither an explicit descriptor nor a
	// declared type that can serve as a token.
	ErrMissingDependencyToken = errors.New("missing dependency token")

	// ErrInstanceNotResolved is reported by synchronous accessors when the
	// target token has no cached instance yet.
	ErrInstanceNotResolved = errors.New("instance not resolved")
)

type DependencyError struct {
	Message     string
	Token       Token
	Chain       []Token
	Status      string
	SourceError error

	kind error
}

func (e *DependencyError) Error() string {
	builder := strings.Builder{}
	builder.WriteString(e.Message)
	builder.WriteString(": ")
	builder.WriteString(tokenName(e.Token))
	if len(e.Chain) > 0 {
		builder.WriteString(" (")
		builder.WriteString(renderChain(e.Chain))
		builder.WriteString(")")
	}
	if e.SourceError != nil {
		builder.WriteString(" (")
		builder.WriteString(e.SourceError.Error())
		builder.WriteString(")")
	}
	return builder.String()
}

func (e *DependencyError) Unwrap() error {
	return e.SourceError
}

func (e *DependencyError) Is(target error) bool {
	return target == e.kind
}

// renderChain formats a resolution chain the way it appears in circular
// dependency diagnostics: each token on the active stack followed by the
// offending token, joined by arrows.
func renderChain(chain []Token) string {
	builder := strings.Builder{}
	for i, tok := range chain {
		if i > 0 {
			builder.WriteString(" -> ")
		}
		builder.WriteString(tokenName(tok))
	}
	return builder.String()
}

func newDependencyError(kind error, message string, token Token) *DependencyError {
	return &DependencyError{
		Message: message,
		Token:   token,
		kind:    kind,
	}
}

package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier rejects identifiers outside the symbolic alphabet
// before they can reach any query construction.
var ErrInvalidIdentifier = errors.New("identifier contains characters outside the symbolic alphabet")

// MaxSymbolLength caps identifier size at the boundary.
const MaxSymbolLength = 64

var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Symbol is a validated identifier drawn from the bounded symbolic alphabet:
// a letter followed by letters, digits, underscores or hyphens.
type Symbol string

// NewSymbol validates an externally supplied identifier and converts it to a
// Symbol. Every identifier crossing a process boundary goes through here.
func NewSymbol(s string) (Symbol, error) {
	if len(s) == 0 || len(s) > MaxSymbolLength || !symbolPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return Symbol(s), nil
}

func (s Symbol) String() string {
	return string(s)
}

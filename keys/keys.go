// Package keys encodes entity ids as websafe reference tokens.
//
// A token has the form <kind>_<version>_<uuid>, for example
// conf_v1_1b4e28ba-2fa1-11d2-883f-0016d3cca427. Decoding distinguishes a
// malformed token from a well-formed token of the wrong kind, so callers can
// report the two failures differently.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindConference Kind = "conf"
	KindSession    Kind = "sess"
	KindSpeaker    Kind = "spkr"
)

const version = "v1"

var (
	ErrMalformed = errors.New("malformed key")
	ErrWrongKind = errors.New("key refers to another kind of entity")
)

func (k Kind) String() string {
	switch k {
	case KindConference:
		return "conference"
	case KindSession:
		return "session"
	case KindSpeaker:
		return "speaker"
	}
	return string(k)
}

func (k Kind) valid() bool {
	return k == KindConference || k == KindSession || k == KindSpeaker
}

func NewId() string {
	return uuid.NewString()
}

func Encode(kind Kind, id string) string {
	return fmt.Sprintf("%v_%v_%v", kind, version, id)
}

// EncodeAll encodes every id in ids with the same kind.
func EncodeAll(kind Kind, ids []string) []string {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, Encode(kind, id))
	}
	return tokens
}

// Parse splits a token into its kind and id.
func Parse(token string) (Kind, string, error) {
	parts := strings.SplitN(strings.TrimSpace(token), "_", 3)
	if len(parts) != 3 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, token)
	}

	kind := Kind(parts[0])
	if !kind.valid() {
		return "", "", fmt.Errorf("%w: unknown kind in %q", ErrMalformed, token)
	}
	if parts[1] != version {
		return "", "", fmt.Errorf("%w: unsupported version in %q", ErrMalformed, token)
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, token)
	}

	return kind, id.String(), nil
}

// Decode parses token and checks that it refers to an entity of kind want.
func Decode(token string, want Kind) (string, error) {
	kind, id, err := Parse(token)
	if err != nil {
		return "", err
	}
	if kind != want {
		return "", fmt.Errorf("%w: %q is a %v key, not a %v key", ErrWrongKind, token, kind, want)
	}
	return id, nil
}

package xmlstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_Category(t *testing.T) {
	assert.Equal(t, "Io", ErrIO.Category())
	assert.Equal(t, "Encoding", ErrInvalidEncoding.Category())
	assert.Equal(t, "Syntax", ErrBadName.Category())
	assert.Equal(t, "Structure", ErrMissingRootElement.Category())
	assert.Equal(t, "Namespace", ErrUnboundPrefix.Category())
	assert.Equal(t, "Attribute", ErrDuplicateAttribute.Category())
	assert.Equal(t, "Entity", ErrEntityExpansionRecursive.Category())
}

func TestError_UnwrapExposesUnderlyingCause(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Kind: ErrIO, Err: cause}
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestError_MessageMentionsKindAndPosition(t *testing.T) {
	err := newErr(ErrBadName, Position{Line: 3, Column: 4}, "bad thing")
	assert.Contains(t, err.Error(), "BadName")
	assert.Contains(t, err.Error(), "3:4")
}

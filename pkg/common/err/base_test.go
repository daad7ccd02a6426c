package err

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "all fields",
			err:  New("store", CodeNotFound, "get", "object missing", errors.New("stat failed")),
			want: "[store][NOT_FOUND]: get: object missing: stat failed",
		},
		{
			name: "no code",
			err:  New("refs", "", "list", "", nil),
			want: "[refs]: list",
		},
		{
			name: "only wrapped",
			err:  &Error{Err: errors.New("boom")},
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	sentinel := New("store", CodeCorrupt, "", "corrupt object", nil)
	raised := New("transfer", CodeCorrupt, "copy", "hash mismatch", nil)
	wrapped := fmt.Errorf("outer: %w", raised)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, New("store", CodeNotFound, "", "", nil)))
}

func TestIsCode_LooksThroughNestedErrors(t *testing.T) {
	inner := New("store", CodeNotFound, "get", "", nil)
	outer := WrapWithCode(inner, "transfer", "ADAPTER_IO", "walk")

	assert.True(t, IsCode(outer, "ADAPTER_IO"))
	assert.True(t, IsCode(outer, CodeNotFound))
	assert.False(t, IsCode(outer, CodeCorrupt))
	assert.Equal(t, "ADAPTER_IO", GetCode(outer))
	assert.Equal(t, "transfer", GetPackage(outer))
}

func TestWrap_Nil(t *testing.T) {
	require.NoError(t, Wrap(nil, "pkg", "op"))
	require.NoError(t, WrapWithCode(nil, "pkg", CodeIO, "op"))
}

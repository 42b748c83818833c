package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "normalizes", in: "  Table ", want: "table"},
		{name: "keeps inner spaces", in: "Coffee Table", want: "coffee table"},
		{name: "digits with letters", in: "tv42", want: "tv42"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: " \t ", wantErr: true},
		{name: "purely numeric", in: "12345", wantErr: true},
		{name: "numeric padded", in: " 7 ", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := validName("name", tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestError_MessageAndKind(t *testing.T) {
	err := newError(ErrNotFound, "product named %s does not exist", "table")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "product named table does not exist", err.Error())
	assert.Equal(t, "product named table does not exist", Message(err))
	assert.Equal(t, "", Message(assert.AnError))
}

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	tserrs "github.com/jdholdren/telescope/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestEConstructor(t *testing.T) {
	got := tserrs.E(
		"could not parse",
		tserrs.KindInvalidIdentity,
		tserrs.Input("http://[::1"),
	)
	want := &tserrs.Error{
		Err:   errors.New("could not parse"),
		Kind:  tserrs.KindInvalidIdentity,
		Input: "http://[::1",
	}

	assert.Equal(t, want, got)
}

func TestErrorIs(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("error adding feed: %w", tserrs.E(cause, tserrs.KindStorageUnavailable))

	assert.ErrorIs(t, err, tserrs.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, tserrs.ErrInvalidIdentity)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *tserrs.Error
		want string
	}{
		{
			name: "with input",
			err:  tserrs.E("empty", tserrs.KindInvalidIdentity, tserrs.Input("x")),
			want: `invalid identity (input "x"): empty`,
		},
		{
			name: "sentinel",
			err:  tserrs.ErrInvalidIdentity,
			want: "invalid identity",
		},
		{
			name: "kind only",
			err:  tserrs.E(tserrs.KindStorageUnavailable),
			want: "storage unavailable",
		},
		{
			name: "without input",
			err:  tserrs.E("timeout", tserrs.KindStorageUnavailable),
			want: "storage unavailable: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", base, KindUnknown},
		{"direct", New(KindBusy, "busy"), KindBusy},
		{"wrapped", Wrap(base, KindGatewayFailure, "gateway"), KindGatewayFailure},
		{"fmt wrapped", fmt.Errorf("outer: %w", Wrap(base, KindRenderFailure, "render")), KindRenderFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, KindGatewayFailure, "x"))
}

func TestErrorsIsSentinel(t *testing.T) {
	err := fmt.Errorf("run: %w", Wrap(errors.New("timeout"), KindGatewayFailure, "model request failed"))

	assert.ErrorIs(t, err, ErrGatewayFailure)
	assert.NotErrorIs(t, err, ErrRenderFailure)
	assert.ErrorIs(t, New(KindEmptyInput, "please enter some text"), ErrEmptyInput)
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(errors.New("quota exceeded"), KindGatewayFailure, "model request failed")
	assert.Equal(t, "model request failed: quota exceeded", err.Error())
	assert.Equal(t, "input is empty", ErrEmptyInput.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrEmptyInput, http.StatusBadRequest},
		{ErrUnknownStyle, http.StatusBadRequest},
		{ErrBusy, http.StatusConflict},
		{ErrGatewayFailure, http.StatusBadGateway},
		{ErrRenderFailure, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

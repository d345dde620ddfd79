package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	errRange := errors.New("start must not be after end")

	tests := []struct {
		name     string
		err      *ValidationError
		wantMsg  string
		wantMsgs map[string]string
	}{
		{
			name:     "single field",
			err:      NewFieldError("start", errRange).(*ValidationError),
			wantMsg:  errRange.Error(),
			wantMsgs: map[string]string{"start": errRange.Error()},
		},
		{
			name: "fields only",
			err: NewValidationError(nil,
				FieldError{Field: "group", Error: "invalid value"},
				FieldError{Field: "date", Error: "invalid value"},
			).(*ValidationError),
			wantMsg:  "group: invalid value; date: invalid value",
			wantMsgs: map[string]string{"group": "invalid value", "date": "invalid value"},
		},
		{
			name:    "no fields",
			err:     NewValidationError(errRange).(*ValidationError),
			wantMsg: errRange.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantMsgs, tt.err.Messages())
		})
	}

	wrapped := errors.Wrap(NewFieldError("start", errRange), "building report")
	assert.True(t, errors.Is(wrapped, errRange))
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(NewShutdownError("database going away")))
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("database going away"), "selecting members")))
	assert.False(t, IsShutdown(errors.New("boom")))
	assert.False(t, IsShutdown(nil))
}

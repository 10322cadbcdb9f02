package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, Window{Release: 0, Meridian: 5, Deadline: 10}.Validate())
	assert.ErrorIs(t, Window{Release: 6, Meridian: 5, Deadline: 10}.Validate(), ErrMalformedInstance)
	assert.ErrorIs(t, Window{Release: 0, Meridian: 11, Deadline: 10}.Validate(), ErrMalformedInstance)
}

func TestWindowValidateDuration(t *testing.T) {
	w := Window{Release: 0, Meridian: 5, Deadline: 10}
	tests := []struct {
		name     string
		duration Time
		ok       bool
	}{
		{"exact half", 5, true},
		{"whole window", 10, true},
		{"too short", 4, false},
		{"too long", 11, false},
		{"zero", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.ValidateDuration(tt.duration)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedInstance)
			}
		})
	}
}

func TestWindowEarliestStart(t *testing.T) {
	w := Window{Release: 3, Meridian: 6, Deadline: 9}
	assert.Equal(t, Time(3), w.EarliestStart(MinTime, 3))
	assert.Equal(t, Time(5), w.EarliestStart(5, 3))
	// a short observation waits for the meridian
	assert.Equal(t, Time(4), w.EarliestStart(0, 2))
}

func TestWindowFits(t *testing.T) {
	w := Window{Release: 3, Meridian: 6, Deadline: 9}
	assert.True(t, w.Fits(5, 3))
	assert.True(t, w.Fits(3, 3))
	assert.False(t, w.Fits(2, 3))
	assert.False(t, w.Fits(7, 3))
	assert.False(t, w.Fits(3, 2))
	assert.Empty(t, w.Check(5, 3))
	assert.Contains(t, w.Check(3, 2), "before meridian")
}

func TestValidationErrorUnwrap(t *testing.T) {
	var err error = &ValidationError{Night: 1, Target: 2, Start: 3, Reason: "overlap"}
	require.True(t, errors.Is(err, ErrInvalidSchedule))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 2, ve.Target)
	assert.Contains(t, err.Error(), "overlap")
}

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type window struct {
	Start string `json:"start" validate:"hhmm"`
	Days  int    `json:"days" validate:"min=0,max=30"`
	Kind  string `json:"kind" validate:"required,color"`
}

func TestValidator(t *testing.T) {
	v := New()
	v.Register("color", func(s string) bool { return s == "red" || s == "blue" })

	assert.NoError(t, v.Validate(&window{Start: "07:30", Days: 2, Kind: "red"}))

	err := v.Validate(&window{Start: "24:00", Days: 31, Kind: "green"})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "window.start", fields[0].Field)
	assert.Equal(t, "must be a time in HH:MM format", fields[0].Message)
	assert.Equal(t, "must be at most 30", fields[1].Message)
	assert.Equal(t, "failed on the 'color' rule", fields[2].Message)
}

func TestIsHHMM(t *testing.T) {
	for _, ok := range []string{"00:00", "09:05", "23:59"} {
		assert.True(t, IsHHMM(ok), ok)
	}
	for _, bad := range []string{"", "7:30", "24:00", "12:60", "12-30"} {
		assert.False(t, IsHHMM(bad), bad)
	}
	assert.Nil(t, Fields(assert.AnError))
}

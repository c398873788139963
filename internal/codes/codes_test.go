package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		want     bool
	}{
		{
			name:     "exit code 0 is success",
			exitCode: 0,
			want:     true,
		},
		{
			name:     "exit code 1 is failure",
			exitCode: 1,
			want:     false,
		},
		{
			name:     "exit code 2 is failure (translation errors)",
			exitCode: 2,
			want:     false,
		},
		{
			name:     "exit code 999 is failure",
			exitCode: 999,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSuccess(tt.exitCode)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		want     string
	}{
		{
			name:     "exit code 0",
			exitCode: 0,
			want:     "Success",
		},
		{
			name:     "exit code 1 - fatal",
			exitCode: 1,
			want:     "Fatal startup error",
		},
		{
			name:     "exit code 2 - partial failure",
			exitCode: 2,
			want:     "One or more translations failed",
		},
		{
			name:     "unknown exit code",
			exitCode: 999,
			want:     "Unknown error",
		},
		{
			name:     "negative exit code",
			exitCode: -1,
			want:     "Unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetErrorMessage(tt.exitCode)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForRun(t *testing.T) {
	assert.Equal(t, Success, ForRun(0, false))
	assert.Equal(t, Success, ForRun(0, true))
	assert.Equal(t, PartialFailure, ForRun(3, false))
	assert.Equal(t, Success, ForRun(3, true), "allow-failures keeps the legacy zero exit")
}

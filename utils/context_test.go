package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsContextCanceled(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"direct context.Canceled", context.Canceled, true},
		{"wrapped context.Canceled", fmt.Errorf("count works: %w", context.Canceled), true},
		{"driver text only", errors.New("failed to connect to `host=db user=gallery`: context canceled"), true},
		{"other error", errors.New("relation \"works\" does not exist"), false},
		{"deadline exceeded", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsContextCanceled(tt.err))
		})
	}
}

func TestIsClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.False(t, IsClientDisconnect(ctx, errors.New("boom")))

	cancel()
	assert.True(t, IsClientDisconnect(ctx, errors.New("boom")))
	assert.True(t, IsClientDisconnect(context.Background(), context.Canceled))
}

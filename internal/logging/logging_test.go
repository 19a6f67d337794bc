// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		json    bool
		want    zapcore.Level
		wantErr bool
	}{
		{name: "default level", level: "", want: zapcore.InfoLevel},
		{name: "debug console", level: "debug", want: zapcore.DebugLevel},
		{name: "info json", level: "info", json: true, want: zapcore.InfoLevel},
		{name: "mixed case and spaces", level: " ERROR ", want: zapcore.ErrorLevel},
		{name: "unknown level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.json)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.level)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/hint/internal/cloud"
	"github.com/jeranaias/hint/internal/config"
	"github.com/jeranaias/hint/internal/storage"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), ExitInterrupted},
		{"deadline", &cloud.TransportError{URL: "u", Err: context.DeadlineExceeded}, ExitTimeoutError},
		{"validation", NewValidationError("temperature", "9", "out of range"), ExitUsageError},
		{"configuration", &config.ConfigurationError{Field: "api.key", Reason: "missing"}, ExitConfigError},
		{"config validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.renderer", Message: "bad"}}), ExitConfigError},
		{"auth", &cloud.RemoteError{Status: 401, Message: "bad key"}, ExitAuthError},
		{"rate limited", &cloud.RemoteError{Status: 429, Message: "slow down"}, ExitGeneralError},
		{"transport", &cloud.TransportError{URL: "u", Err: errors.New("connection refused")}, ExitNetworkError},
		{"file", &FileAccessError{Path: "x", Err: fs.ErrNotExist}, ExitNotFoundError},
		{"storage", &storage.Error{Op: "append", Err: errors.New("disk full")}, ExitGeneralError},
		{"malformed", &cloud.MalformedResponseError{Reason: "missing choices"}, ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationErrorWithExample("temperature", "hot", "must be a number", "hint -t 0.5 hi")
	assert.Equal(t, "invalid temperature: must be a number (got: hot)\nExample: hint -t 0.5 hi", err.Error())
}

func TestDisplayError(t *testing.T) {
	ConfigureStyles(termenv.Ascii)

	t.Run("nil writes nothing", func(t *testing.T) {
		var b bytes.Buffer
		DisplayError(&b, nil)
		assert.Empty(t, b.String())
	})

	t.Run("auth hint", func(t *testing.T) {
		var b bytes.Buffer
		DisplayError(&b, &cloud.RemoteError{Status: 401, Message: "bad key"})
		assert.True(t, strings.HasPrefix(b.String(), "[ERROR] remote error (HTTP 401): bad key"))
		assert.Contains(t, b.String(), "OPENAI_API_KEY")
	})

	t.Run("model hint", func(t *testing.T) {
		var b bytes.Buffer
		DisplayError(&b, &cloud.RemoteError{Status: 404, Code: "model_not_found", Message: "no such model"})
		assert.Contains(t, b.String(), "--model")
	})

	t.Run("plain", func(t *testing.T) {
		var b bytes.Buffer
		DisplayError(&b, errors.New("boom"))
		assert.Equal(t, "[ERROR] boom\n", b.String())
	})
}

func TestColorProfile(t *testing.T) {
	detect := func(p termenv.Profile) func() termenv.Profile {
		return func() termenv.Profile { return p }
	}

	tests := []struct {
		name    string
		noColor bool
		force   bool
		tty     bool
		detect  termenv.Profile
		want    termenv.Profile
	}{
		{"tty uses detection", false, false, true, termenv.ANSI256, termenv.ANSI256},
		{"no color wins", true, true, true, termenv.TrueColor, termenv.Ascii},
		{"pipe is plain", false, false, false, termenv.TrueColor, termenv.Ascii},
		{"force on pipe", false, true, false, termenv.Ascii, termenv.ANSI},
		{"force keeps detected", false, true, false, termenv.TrueColor, termenv.TrueColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := colorProfile(tt.noColor, tt.force, tt.tty, detect(tt.detect))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderStatus(t *testing.T) {
	ConfigureStyles(termenv.Ascii)
	assert.Equal(t, "[OK]", RenderStatus("ok"))
	assert.Equal(t, "[FAIL]", RenderStatus("FAIL"))
	assert.Equal(t, "[SKIP]", RenderStatus("skip"))
	assert.Equal(t, "[WAIT]", RenderStatus("wait"))
}

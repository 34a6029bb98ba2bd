package auth

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier(t *testing.T) {
	t.Run("masks email and hides code", func(t *testing.T) {
		var buf bytes.Buffer
		n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)), false)

		require.NoError(t, n.SendOTP(context.Background(), "ana@example.com", "482913"))
		assert.Contains(t, buf.String(), `"email":"a***@example.com"`)
		assert.NotContains(t, buf.String(), `"otp"`)
		assert.NotContains(t, buf.String(), "ana@example.com")
	})

	t.Run("development mode includes code", func(t *testing.T) {
		var buf bytes.Buffer
		n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)), true)

		require.NoError(t, n.SendOTP(context.Background(), "ana@example.com", "123456"))
		assert.Contains(t, buf.String(), `"otp":"123456"`)
	})
}

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forgeerrors "github.com/assetforge/assetforge/internal/errors"
	"github.com/assetforge/assetforge/internal/logging"
)

func newTestRunner() *ExecRunner {
	return NewExecRunner(logging.NopLogger{})
}

func TestExecRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stdout on success", func(t *testing.T) {
		out, err := newTestRunner().Run(ctx, "sh", []string{"-c", "printf hello"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(out))
	})

	t.Run("pipes stdin to the process", func(t *testing.T) {
		out, err := newTestRunner().Run(ctx, "cat", nil, []byte("body { color: red }"))
		require.NoError(t, err)
		assert.Equal(t, "body { color: red }", string(out))
	})

	t.Run("nonzero exit is a compile error with stderr", func(t *testing.T) {
		_, err := newTestRunner().Run(ctx, "sh", []string{"-c", "echo broken >&2; exit 3"}, nil)
		require.Error(t, err)

		var ce *forgeerrors.CompileError
		require.ErrorAs(t, err, &ce)
		assert.Contains(t, ce.Stderr, "broken")
		assert.Equal(t, "sh", ce.Command[0])
	})

	t.Run("stderr on success does not fail the call", func(t *testing.T) {
		out, err := newTestRunner().Run(ctx, "sh", []string{"-c", "echo warn >&2; printf ok"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(out))
	})

	t.Run("missing binary is a compile error", func(t *testing.T) {
		_, err := newTestRunner().Run(ctx, "definitely-not-a-real-compiler", nil, nil)
		assert.True(t, forgeerrors.IsCompileError(err))
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := newTestRunner().Run(ctx, "sleep", []string{"5"}, nil)
		assert.Error(t, err)
	})
}

package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	t.Run("empty and slash resolve to the root", func(t *testing.T) {
		for _, input := range []string{"", "/", "  "} {
			resolved, resolveErr := validator.ResolvePath(input)
			require.NoError(t, resolveErr)
			require.Equal(t, validator.RootAbs(), resolved)
		}
	})

	t.Run("relative paths join under the root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolvePath("/invoices/2026")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "invoices", "2026"), resolved)
	})

	t.Run("backslashes are treated as separators", func(t *testing.T) {
		resolved, resolveErr := validator.ResolvePath(`invoices\2026`)
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "invoices", "2026"), resolved)
	})

	t.Run("rejects traversal segments", func(t *testing.T) {
		_, resolveErr := validator.ResolvePath("../outside")
		require.Error(t, resolveErr)

		_, resolveErr = validator.ResolvePath("/invoices/../../outside")
		require.Error(t, resolveErr)
	})

	t.Run("rejects control characters", func(t *testing.T) {
		_, resolveErr := validator.ResolvePath("invoices\x00")
		require.Error(t, resolveErr)

		_, resolveErr = validator.ResolvePath("invoices\n2026")
		require.Error(t, resolveErr)
	})
}

func TestStorage(t *testing.T) {
	t.Parallel()

	t.Run("creates the root on demand", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data")
		store, err := New(root)
		require.NoError(t, err)

		info, err := store.Stat("/")
		require.NoError(t, err)
		require.True(t, info.IsDir())
	})

	t.Run("rejects an empty root", func(t *testing.T) {
		_, err := New("  ")
		require.Error(t, err)
	})
}

package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFilename(t *testing.T) {
	t.Parallel()

	t.Run("accepts ordinary filenames", func(t *testing.T) {
		require.NoError(t, ValidateFilename("report-2026 final.pdf"))
		require.NoError(t, ValidateFilename(".env"))
		require.NoError(t, ValidateFilename("naïve résumé.txt"))
	})

	t.Run("rejects empty and blank names", func(t *testing.T) {
		require.Error(t, ValidateFilename(""))
		require.Error(t, ValidateFilename("   "))
	})

	t.Run("rejects dot and dot-dot", func(t *testing.T) {
		require.Error(t, ValidateFilename("."))
		require.Error(t, ValidateFilename(".."))
	})

	t.Run("rejects path separators", func(t *testing.T) {
		require.Error(t, ValidateFilename("sub/file.txt"))
		require.Error(t, ValidateFilename(`sub\file.txt`))
	})

	t.Run("rejects control and invisible characters", func(t *testing.T) {
		require.Error(t, ValidateFilename("file\x00.txt"))
		require.Error(t, ValidateFilename("file\n.txt"))
		require.Error(t, ValidateFilename("file​.txt"))
	})

	t.Run("rejects names longer than 255 runes", func(t *testing.T) {
		require.Error(t, ValidateFilename(strings.Repeat("a", 256)))
		require.NoError(t, ValidateFilename(strings.Repeat("a", 255)))
	})

	t.Run("rejects windows reserved names", func(t *testing.T) {
		require.Error(t, ValidateFilename("CON"))
		require.Error(t, ValidateFilename("con.txt"))
		require.Error(t, ValidateFilename("LPT1.log"))
		require.NoError(t, ValidateFilename("CONSOLE.txt"))
	})
}

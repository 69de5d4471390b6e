package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturomorarioja/csv-parser-api/internal/core"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		baseDir, compact, maxFileSize, timeout = "", false, core.DefaultMaxFileSize, time.Minute
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "csvparse [file]", rootCmd.Use)
}

func TestRootCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := runRoot(t)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{"base-dir", "compact", "max-size", "timeout"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
}

func TestRootCmd_ParsesRelativeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "people.csv"), []byte("name,age\nAnn,30\n"), 0o644))

	out, err := runRoot(t, "--base-dir", dir, "people.csv")

	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"name\": \"Ann\",\n    \"age\": \"30\"\n  }\n]\n", out)
}

func TestRootCmd_Compact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("k\n<v>\n"), 0o644))

	out, err := runRoot(t, "-b", dir, "-c", "a.csv")

	require.NoError(t, err)
	assert.Equal(t, "[{\"k\":\"<v>\"}]\n", out)
}

func TestRootCmd_RejectsEscape(t *testing.T) {
	_, err := runRoot(t, "--base-dir", t.TempDir(), "../outside.csv")

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPathEscape)
	assert.Equal(t, "Path outside allowed base directory. (PATH002)", cliMessage(err))
}

func TestCliMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", cliMessage(errors.New("boom")))
}

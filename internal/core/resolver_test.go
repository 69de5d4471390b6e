package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, base string) *Resolver {
	t.Helper()
	r, err := NewResolver(base)
	require.NoError(t, err)
	return r
}

func TestResolver_Resolve(t *testing.T) {
	if os.PathSeparator != '/' {
		t.Skip("POSIX paths only")
	}
	r := newTestResolver(t, "/app/data")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "relative file", input: "sales.csv", want: "/app/data/sales.csv"},
		{name: "nested relative", input: "2024/q1/sales.csv", want: "/app/data/2024/q1/sales.csv"},
		{name: "dot segments inside base", input: "./a/../sales.csv", want: "/app/data/sales.csv"},
		{name: "base itself", input: ".", want: "/app/data"},
		{name: "dotdot back into base", input: "../data/x.csv", want: "/app/data/x.csv"},
		{name: "redundant separators", input: "a//b///c.csv", want: "/app/data/a/b/c.csv"},
		{name: "absolute passes through", input: "/etc/passwd", want: "/etc/passwd"},
		{name: "absolute is canonicalized", input: "/srv/./x/../y.csv", want: "/srv/y.csv"},
		{name: "absolute trailing slash", input: "/srv/dir/", want: "/srv/dir"},
		{name: "escape", input: "../../etc/passwd", wantErr: ErrPathEscape},
		{name: "escape to parent", input: "..", wantErr: ErrPathEscape},
		{name: "sibling with shared prefix", input: "../data-other/x.csv", wantErr: ErrPathEscape},
		{name: "empty", input: "", wantErr: ErrInvalidInput},
		{name: "nul byte", input: "a\x00b.csv", wantErr: ErrInvalidInput},
		{name: "drive letter backslash", input: `C:\data\x.csv`, wantErr: ErrInvalidInput},
		{name: "drive letter slash", input: "d:/data/x.csv", wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_DriveLetterWithoutSeparatorIsRelative(t *testing.T) {
	if os.PathSeparator != '/' {
		t.Skip("POSIX paths only")
	}
	r := newTestResolver(t, "/app/data")

	got, err := r.Resolve("C:file.csv")
	require.NoError(t, err)
	assert.Equal(t, "/app/data/C:file.csv", got)
}

func TestResolver_Messages(t *testing.T) {
	if os.PathSeparator != '/' {
		t.Skip("POSIX paths only")
	}
	r := newTestResolver(t, "/app/data")

	_, err := r.Resolve("")
	assert.Equal(t, "Missing file path.", Message(err))

	_, err = r.Resolve(`C:\x`)
	assert.Equal(t, "Windows-style paths are not valid here.", Message(err))

	_, err = r.Resolve("../../etc/passwd")
	assert.Equal(t, "Path outside allowed base directory.", Message(err))
}

func TestResolver_RootBase(t *testing.T) {
	if os.PathSeparator != '/' {
		t.Skip("POSIX paths only")
	}
	r := newTestResolver(t, "/")

	got, err := r.Resolve("etc/hosts")
	require.NoError(t, err)
	assert.Equal(t, "/etc/hosts", got)

	got, err = r.Resolve("../..")
	require.NoError(t, err)
	assert.Equal(t, "/", got)
}

func TestResolver_RelativeBaseIsCanonicalized(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	r := newTestResolver(t, "testdata/../testdata")
	assert.Equal(t, filepath.Join(wd, "testdata"), r.Base())

	got, err := r.Resolve("people.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "testdata", "people.csv"), got)
}

func TestResolver_ResultsStayUnderBase(t *testing.T) {
	base := t.TempDir()
	r := newTestResolver(t, base)

	inputs := []string{"a.csv", "x/../b.csv", "x/y/../../c.csv", "../" + filepath.Base(base) + "/d.csv"}
	for _, in := range inputs {
		got, err := r.Resolve(in)
		require.NoError(t, err, in)
		assert.True(t, got == r.Base() || len(got) > len(r.Base()) && got[:len(r.Base())+1] == r.Base()+string(os.PathSeparator),
			"%q resolved outside base: %q", in, got)
	}
}

func TestNewResolver_EmptyBase(t *testing.T) {
	_, err := NewResolver("")
	assert.Error(t, err)
}

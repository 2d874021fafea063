package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-submit/internal/convert"
	"github.com/pdiddy/course-submit/internal/manifest"
)

func newManifestFlagCmd(t *testing.T, value string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("manifest", "", "")
	if value != "" {
		require.NoError(t, cmd.Flags().Set("manifest", value))
	}
	return cmd
}

func TestResolveManifest_BuiltIn(t *testing.T) {
	m, err := resolveManifest(newManifestFlagCmd(t, ""), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, manifest.Default(), m)
}

func TestResolveManifest_AssignmentDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte("name: a4\n"), 0o644))

	m, err := resolveManifest(newManifestFlagCmd(t, ""), dir)
	require.NoError(t, err)
	assert.Equal(t, "a4", m.Name)
}

func TestResolveManifest_FlagWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte("name: a4\n"), 0o644))
	other := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("name: a5\n"), 0o644))

	m, err := resolveManifest(newManifestFlagCmd(t, other), dir)
	require.NoError(t, err)
	assert.Equal(t, "a5", m.Name)
}

func TestManifestCommand_PrintsYAML(t *testing.T) {
	var out bytes.Buffer
	cmd := newManifestFlagCmd(t, "")
	cmd.SetOut(&out)

	require.NoError(t, manifestCmd.RunE(cmd, []string{t.TempDir()}))
	assert.Contains(t, out.String(), "name: a2")
	assert.Contains(t, out.String(), "max_artifact_size: 10MiB")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", shortID("0123abcd-aaaa-bbbb"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestConversionTimeout(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{"unset uses default", nil, convert.DefaultTimeout, false},
		{"duration string", "5m", 5 * time.Minute, false},
		{"seconds string", "300s", 300 * time.Second, false},
		{"bare integer is nanoseconds", 300, 0, true},
		{"negative", "-1s", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			if tt.value != nil {
				v.Set("timeout", tt.value)
			}
			got, err := conversionTimeout(v)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "under one second")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

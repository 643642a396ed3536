package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/metr/pkg/config/xconf"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCmdCheckValid(t *testing.T) {
	path := writeConfig(t, "log:\n  enabled: true\n  level: debug\n")

	var out bytes.Buffer
	require.NoError(t, cmdCheck(&out, path))

	assert.Contains(t, out.String(), "level=debug")
	assert.Contains(t, out.String(), "配置校验通过")
}

func TestCmdCheckInvalidSettings(t *testing.T) {
	path := writeConfig(t, "sinks:\n  clickhouse:\n    enabled: true\n")

	var out bytes.Buffer
	err := cmdCheck(&out, path)
	assert.ErrorIs(t, err, xconf.ErrInvalidSettings)
}

func TestCmdCheckMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := cmdCheck(&out, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, xconf.ErrLoadFailed)
}

func TestCmdEmitLogsRecord(t *testing.T) {
	var logOut bytes.Buffer
	require.NoError(t, cmdEmit(context.Background(), &logOut, "", "api.login", 7))

	assert.Contains(t, logOut.String(), "api.login")
	assert.Contains(t, logOut.String(), "value=7")
}

func TestCmdEmitInvalidTag(t *testing.T) {
	var logOut bytes.Buffer
	err := cmdEmit(context.Background(), &logOut, "", "a..b", 1)

	var usageErr *usageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestRunExitCodes(t *testing.T) {
	valid := writeConfig(t, "log:\n  enabled: true\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"check valid", []string{"metrctl", "-c", valid, "check"}, 0},
		{"check missing config flag", []string{"metrctl", "check"}, 2},
		{"check missing file", []string{"metrctl", "-c", "/nonexistent/x.yaml", "check"}, 1},
		{"emit without tag", []string{"metrctl", "emit"}, 2},
		{"emit valid", []string{"metrctl", "emit", "--tag", "api.login", "--value", "3"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(tt.args))
		})
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WayneDavenport/Mediaq-sub000/internal/controllers"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "mediaq dev\n", execute(t, "version"))
}

func TestAuditCommandOnEmptyDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("DATABASE_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	var report controllers.AuditReport
	require.NoError(t, json.Unmarshal([]byte(execute(t, "audit", "--repair")), &report))
	assert.Equal(t, 0, report.Owners)
	assert.Empty(t, report.Violations)
}

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--data-dir", dir, "--log-level", "error"}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestSeedStatsAuditFlow(t *testing.T) {
	dir := t.TempDir()

	out := runCommand(t, dir, "seed", "--patients", "5")
	assert.Contains(t, out, "created 5 patients")

	out = runCommand(t, dir, "stats")
	assert.Contains(t, out, "identities:")
	assert.Contains(t, out, "clinical records: 5")

	out = runCommand(t, dir, "audit", "--action", "create")
	assert.Contains(t, out, "5 entries")

	out = runCommand(t, dir, "verify")
	assert.Contains(t, out, "no anomalies found")
}

func TestDemoSurvivesErasure(t *testing.T) {
	out := runCommand(t, t.TempDir(), "demo")
	assert.Contains(t, out, "identity erased")
	assert.Contains(t, out, "clinical record still readable by pseudonym")
	assert.Contains(t, out, "audit trail")
}

func TestEraseIsIdempotent(t *testing.T) {
	out := runCommand(t, t.TempDir(), "erase", "no-such-identity")
	assert.Contains(t, out, "erased")
}

func TestAuditRejectsUnknownAction(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data-dir", t.TempDir(), "audit", "--action", "export"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown audit action")
}

package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforward/go-fsm"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	stdout, stderr, err := execute(t, "run", "1", "2", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mode: ACTIVE\n")
	assert.Contains(t, stdout, "telemetry: 3\n")
	assert.Contains(t, stdout, "stored: 0\n")
	assert.Contains(t, stdout, "pid: 2\n")
	assert.Contains(t, stdout, "non-volatile: 1\n")
	assert.Contains(t, stdout, "- save hi-freq data\n")
	assert.Contains(t, stderr, "from=ACTIVE to=FIRING")
}

func TestRunReset(t *testing.T) {
	stdout, _, err := execute(t, "run", "--reset", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mode: FIRING\n")
	// storage survives a state reset
	assert.Contains(t, stdout, "telemetry: 2\n")
}

func TestRunPolicy(t *testing.T) {
	stdout, _, err := execute(t, "run", "--policy", "mealy", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mode: ACTIVE\n")
	assert.NotContains(t, stdout, "- init")

	stdout, _, err = execute(t, "run", "--policy", "moore", "1", "2", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "non-volatile: 0\n")
	assert.Contains(t, stdout, "- init firing sequence\n")
}

func TestRunTrace(t *testing.T) {
	_, stderr, err := execute(t, "run", "--trace", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"Name": "fsm.transit"`)
	assert.Contains(t, stderr, `"Value": "ACTIVE"`)
}

func TestRunMetrics(t *testing.T) {
	stdout, _, err := execute(t, "run", "--metrics", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, `fsm_transitions_total{machine="board",source="STANDBY",target="ACTIVE"} 1`)
	assert.Contains(t, stdout, `fsm_state{machine="board",state="ACTIVE"} 1`)
}

func TestRunErrors(t *testing.T) {
	_, _, err := execute(t, "run", "fire")
	assert.ErrorContains(t, err, `invalid telecommand "fire"`)

	_, _, err = execute(t, "run", "--policy", "harel", "1")
	assert.ErrorContains(t, err, `invalid policy "harel"`)

	_, _, err = execute(t, "run", "--log-level", "loud", "1")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestDiagram(t *testing.T) {
	stdout, _, err := execute(t, "diagram", "1", "3", "1")
	require.NoError(t, err)
	assert.Equal(t, `@startuml board
state STANDBY
state ACTIVE
state STR_TM
[*] ----> STANDBY
STANDBY ----> ACTIVE : TC1
ACTIVE ----> STR_TM : TC3
STR_TM ----> ACTIVE : TC1
@enduml
`, stdout)
}

func TestParsePolicy(t *testing.T) {
	for input, expected := range map[string]fsm.Policy{
		"":       fsm.Custom,
		"custom": fsm.Custom,
		"Moore":  fsm.Moore,
		"MEALY":  fsm.Mealy,
	} {
		policy, err := parsePolicy(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, policy, input)
	}
}

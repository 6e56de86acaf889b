package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: two owners
steps:
  - {op: alloc, ref: s, size: 8}
  - {op: retain, ref: s}
  - {op: expect, ref: s, count: 2}
  - {op: release, ref: s, freed: false}
  - {op: release, ref: s, freed: true}
  - {op: free_check, ref: s}
`

const leakingScenario = `
name: forgotten
steps:
  - {op: alloc, ref: s, size: 8}
  - {op: retain, ref: s}
  - {op: release, ref: s}
`

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		json        bool
		failFast    bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "passing scenario",
			body:        passingScenario,
			wantContain: []string{"PASS", "two owners", "free_check", "allocs 1, frees 1"},
		},
		{
			name:        "leaking scenario",
			body:        leakingScenario,
			wantErr:     true,
			wantContain: []string{"FAIL", "1 blocks leaked"},
		},
		{
			name:        "passing scenario as JSON",
			body:        passingScenario,
			json:        true,
			wantContain: []string{`"passed": true`, `"name": "two owners"`},
		},
		{
			name:     "fail fast",
			body:     "steps:\n  - {op: release, ref: nobody}\n  - {op: alloc, ref: a}\n",
			failFast: true,
			wantErr:  true,
			wantContain: []string{
				"unknown ref",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json
			runFailFast = tt.failFast
			path := writeScenario(t, tt.body)

			out, err := captureOutput(t, func() error {
				return runScenario([]string{path})
			})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.json {
				assertJSON(t, out)
			}
			assertContains(t, out, tt.wantContain)
		})
	}
}

func TestRunCommand_JSONStepCount(t *testing.T) {
	resetFlags()
	jsonOut = true
	path := writeScenario(t, passingScenario)

	out, err := captureOutput(t, func() error {
		return runScenario([]string{path})
	})
	require.NoError(t, err)

	var res struct {
		Passed bool `json:"passed"`
		Steps  []struct {
			OK bool `json:"ok"`
		} `json:"steps"`
		Leaked int `json:"leaked"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Passed)
	assert.Len(t, res.Steps, 6)
	assert.Zero(t, res.Leaked)
}

func TestRunCommand_BadFile(t *testing.T) {
	resetFlags()

	_, err := captureOutput(t, func() error {
		return runScenario([]string{"does-not-exist.yaml"})
	})
	require.Error(t, err)

	path := writeScenario(t, "steps:\n  - {op: teleport, ref: a}\n")
	_, err = captureOutput(t, func() error {
		return runScenario([]string{path})
	})
	require.Error(t, err)
}

func TestRunCommand_Quiet(t *testing.T) {
	resetFlags()
	quiet = true
	path := writeScenario(t, passingScenario)

	out, err := captureOutput(t, func() error {
		return runScenario([]string{path})
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

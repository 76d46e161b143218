package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	color.NoColor = true
	t.Setenv("OTEL_SDK_DISABLED", "true")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShellCommand(t *testing.T) {
	out, err := execute(t, "create_parking_lot 2\npark KA-01-HH-1234 White\nslot_number_for_registration_number KA-01-HH-1234\n", "shell")
	require.NoError(t, err)
	assert.Equal(t, "Created a parking lot with 2 slots\nAllocated slot number: 1\n1\n", out)
}

func TestRunCommandWithMetricsFile(t *testing.T) {
	dir := t.TempDir()
	commands := filepath.Join(dir, "session.txt")
	metrics := filepath.Join(dir, "parking_lot.prom")
	require.NoError(t, os.WriteFile(commands, []byte("create_parking_lot 3\npark KA-01-HH-1234 White\nleave 1\npark KA-01-HH-9999 Black\n"), 0o644))

	out, err := execute(t, "", "run", commands, "--metrics-file", metrics)
	require.NoError(t, err)
	assert.Equal(t, "Created a parking lot with 3 slots\nAllocated slot number: 1\nSlot number 1 is free\nAllocated slot number: 1\n", out)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "parking_lot_slots_occupied 1")
}

func TestRunCommandMissingFile(t *testing.T) {
	_, err := execute(t, "", "run", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRunCommandRequiresFile(t *testing.T) {
	_, err := execute(t, "", "run")
	assert.Error(t, err)
}

func TestBadConfigFile(t *testing.T) {
	_, err := execute(t, "", "shell", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

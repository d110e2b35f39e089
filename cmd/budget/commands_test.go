package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default; the command tree is shared
// between executions.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	require.NoError(t, err, "budget %v\n%s", args, out)
	return out
}

func TestCommandsAgainstSQLite(t *testing.T) {
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "envelope.db"))
	t.Setenv("AMQP_URL", "")
	t.Setenv("SPEND_POLICY", "")
	t.Setenv("LOG_LEVEL", "error")

	run(t, "account", "add", "Checking", "--balance", "1000")
	run(t, "category", "add", "Needs", "Groceries")
	run(t, "category", "add", "Needs", "Rent")

	out := run(t, "assign", "Groceries", "200")
	assert.Contains(t, out, "Groceries assigned $200.00")
	assert.Contains(t, out, "$800.00")

	out = run(t, "move", "Groceries", "Rent", "50")
	assert.Contains(t, out, "Moved $50.00 from Groceries to Rent")

	out = run(t, "assign", "Rent", "25", "--subtract")
	assert.Contains(t, out, "Rent assigned $25.00")

	out = run(t, "target", "set", "Rent", "--amount", "100", "--day", "1")
	assert.Contains(t, out, "Rent: $75.00 more needed by the 1st")
	assert.Contains(t, out, "Next due")

	out = run(t, "summary")
	assert.Contains(t, out, "Ready to Assign")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Credit Card Payments")

	out = run(t, "account", "list")
	assert.Contains(t, out, "Checking")

	out = run(t, "account", "reconcile", "Checking", "1000")
	assert.Contains(t, out, "already matches the statement")
}

func TestCommandErrors(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("MEMORY_SEED_DIR", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown category", []string{"assign", "Nowhere", "10"}, `no category matches "Nowhere"`},
		{"bad amount", []string{"assign", "Nowhere", "ten"}, "invalid amount"},
		{"exclusive flags", []string{"assign", "x", "1", "--add", "--subtract"}, "mutually exclusive"},
		{"reset needs confirmation", []string{"plan", "reset"}, "--yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

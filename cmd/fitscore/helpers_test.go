package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command in-process from an empty working directory, with the stub
// provider and no database, and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("FITSCORE_EMBEDDING_PROVIDER", "stub")
	t.Setenv("FITSCORE_DATABASE_URL", "")
	t.Setenv("FITSCORE_REDIS_ENABLED", "false")
	t.Setenv("FITSCORE_LOG_LEVEL", "error")
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default, since cobra commands are package globals
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// writeFile writes content to name under a fresh temp directory and returns its path
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const (
	candidateJSON = `{
  "id": "cand-1",
  "kind": "candidate",
  "description": "Backend engineer building Go services",
  "experience_level": "expert",
  "country": "DE",
  "languages": {"de": "fluent"},
  "compensation": {"amount": 65000, "currency": "EUR"},
  "skills": ["Go", "PostgreSQL"]
}`
	opportunityJSON = `{
  "id": "job-1",
  "kind": "opportunity",
  "description": "Backend engineer building Go services",
  "experience_level": "intermediate",
  "country": "DE",
  "languages": {"de": "advanced"},
  "compensation": {"amount": 65000, "currency": "EUR"},
  "skills": ["go", "postgresql", "kubernetes"]
}`
)

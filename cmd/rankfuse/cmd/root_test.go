package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_ShowsHelp(t *testing.T) {
	// Given: a root command

	// When: executing with --help
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()

	// Then: it should show usage information
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "rankfuse", "Help should mention program name")
	assert.Contains(t, output, "Usage:", "Help should show usage")
}

func TestRootCmd_NoArgsShowsHelp(t *testing.T) {
	// Given: a root command with no arguments
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	// When: executing
	err := cmd.Execute()

	// Then: it should print help rather than fail
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Available Commands:")
}

func TestRootCmd_ShowsVersion(t *testing.T) {
	// Given: a root command

	// When: executing with --version
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	err := cmd.Execute()

	// Then: it should show the version template
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "rankfuse version", "Version output should use the template")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: a root command

	// When: checking available commands
	cmd := NewRootCmd()
	subcommands := cmd.Commands()

	// Then: every top-level command should be registered
	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "rank", "Should have rank subcommand")
	assert.Contains(t, commandNames, "select", "Should have select subcommand")
	assert.Contains(t, commandNames, "hybrid", "Should have hybrid subcommand")
	assert.Contains(t, commandNames, "config", "Should have config subcommand")
	assert.Contains(t, commandNames, "logs", "Should have logs subcommand")
	assert.Contains(t, commandNames, "version", "Should have version subcommand")
}

func TestRootCmd_HasDebugFlag(t *testing.T) {
	// Given: a root command
	cmd := NewRootCmd()

	// Then: it should have a persistent --debug flag
	flag := cmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, flag, "Should have --debug flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCmd_HasNoColorFlag(t *testing.T) {
	// Given: a root command
	cmd := NewRootCmd()

	// Then: it should have a persistent --no-color flag
	flag := cmd.PersistentFlags().Lookup("no-color")
	require.NotNil(t, flag, "Should have --no-color flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCmd_HasProfilingFlags(t *testing.T) {
	// Given: a root command
	cmd := NewRootCmd()

	// Then: the profiling flags should be registered
	for _, name := range []string{"profile-cpu", "profile-mem", "profile-trace"} {
		flag := cmd.PersistentFlags().Lookup(name)
		assert.NotNil(t, flag, "Should have --%s flag", name)
	}
}

func TestRootCmd_WritesCPUProfile(t *testing.T) {
	// Given: a rank run with --profile-cpu
	isolateConfig(t)
	docsPath := writeDocsFile(t, "docs.yaml", rankTestDocs)
	profilePath := filepath.Join(t.TempDir(), "cpu.prof")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"rank", docsPath, "--signal", "views", "--format", "json", "--profile-cpu", profilePath})

	// When: executing
	require.NoError(t, cmd.Execute())

	// Then: the profile file should exist with content
	info, err := os.Stat(profilePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRankCmd_ShowsHelp(t *testing.T) {
	// Given: a root command

	// When: executing rank --help
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"rank", "--help"})

	err := cmd.Execute()

	// Then: it should show rank usage with its flags
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "rank", "Rank help should mention rank")
	assert.Contains(t, output, "--signal", "Rank help should list --signal")
	assert.Contains(t, output, "--strategy", "Rank help should list --strategy")
}

func TestHybridCmd_ShowsHelp(t *testing.T) {
	// Given: a root command

	// When: executing hybrid --help
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"hybrid", "--help"})

	err := cmd.Execute()

	// Then: it should show hybrid usage
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "hybrid", "Hybrid help should mention hybrid")
	assert.Contains(t, output, "--diversify", "Hybrid help should list --diversify")
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusworks/rankfuse/internal/config"
)

// ============================================================================
// Config CLI Tests
// ============================================================================

func TestConfigCmd_HasSubcommands(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding config command
	configCmd, _, err := cmd.Find([]string{"config"})
	require.NoError(t, err)

	// Then: config command should have subcommands
	subcommands := configCmd.Commands()
	assert.GreaterOrEqual(t, len(subcommands), 3, "config should have init, show, path subcommands")

	names := make(map[string]bool)
	for _, sc := range subcommands {
		names[sc.Name()] = true
	}
	assert.True(t, names["init"], "should have init command")
	assert.True(t, names["show"], "should have show command")
	assert.True(t, names["path"], "should have path command")
}

func TestConfigInitCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding config init command
	initCmd, _, err := cmd.Find([]string{"config", "init"})
	require.NoError(t, err)

	// Then: should have --force and --user flags
	forceFlag := initCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag, "should have --force flag")
	assert.Equal(t, "false", forceFlag.DefValue)

	userFlag := initCmd.Flags().Lookup("user")
	require.NotNil(t, userFlag, "should have --user flag")
	assert.Equal(t, "false", userFlag.DefValue)
}

func TestConfigShowCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding config show command
	showCmd, _, err := cmd.Find([]string{"config", "show"})
	require.NoError(t, err)

	// Then: should have --json flag
	jsonFlag := showCmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag, "should have --json flag")
	assert.Equal(t, "false", jsonFlag.DefValue)

	// And: should have --source flag defaulting to merged
	sourceFlag := showCmd.Flags().Lookup("source")
	require.NotNil(t, sourceFlag, "should have --source flag")
	assert.Equal(t, "merged", sourceFlag.DefValue)
}

func TestConfigPathCmd_OutputsPath(t *testing.T) {
	// Given: isolated config environment
	isolateConfig(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "path"})

	// When: running config path
	err := cmd.Execute()

	// Then: should succeed and output the user config path
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "rankfuse", "should contain rankfuse in path")
	assert.Contains(t, output, "config.yaml", "should contain config.yaml")
}

func TestRunConfigInit_ProjectFile(t *testing.T) {
	// Given: a temp working directory
	isolateConfig(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "init"})

	// When: running config init
	err := cmd.Execute()

	// Then: should succeed and create the project config
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Created", "should indicate creation")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	configPath := filepath.Join(cwd, ".rankfuse.yaml")
	_, err = os.Stat(configPath)
	require.NoError(t, err, "project config file should exist")

	// And: the template should load and validate
	cfg, err := config.Load(cwd)
	require.NoError(t, err, "template should be loadable")
	require.NoError(t, cfg.Validate(), "template should validate")
}

func TestRunConfigInit_UserFile(t *testing.T) {
	// Given: an isolated XDG config home
	isolateConfig(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "init", "--user"})

	// When: running config init --user
	err := cmd.Execute()

	// Then: should create the user config under XDG_CONFIG_HOME
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Created")

	_, err = os.Stat(config.GetUserConfigPath())
	assert.NoError(t, err, "user config file should exist")
}

func TestRunConfigInit_AlreadyExists(t *testing.T) {
	// Given: an existing project config
	isolateConfig(t)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	configPath := filepath.Join(cwd, ".rankfuse.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1"), 0644))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "init"})

	// When: running config init without --force
	err = cmd.Execute()

	// Then: should succeed but not overwrite (just warn)
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "already exists", "should indicate config already exists")
	assert.Contains(t, output, "--force", "should mention --force flag")

	// And: original file should be unchanged
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "version: 1", string(data), "file should be unchanged")
}

func TestRunConfigInit_ForceOverwrites(t *testing.T) {
	// Given: an existing project config
	isolateConfig(t)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	configPath := filepath.Join(cwd, ".rankfuse.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1"), 0644))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "init", "--force"})

	// When: running config init --force
	err = cmd.Execute()

	// Then: the template replaces the old file
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Created")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ranking:", "template content should be written")
}

func TestRunConfigShow_Defaults(t *testing.T) {
	// Given: clean environment
	isolateConfig(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "show", "--source=defaults"})

	// When: showing default config
	err := cmd.Execute()

	// Then: should succeed and show defaults
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "defaults", "should indicate defaults source")
	assert.Contains(t, output, "ranking", "should contain ranking section")
	assert.Contains(t, output, "weighted_sum", "should show the default strategy")
}

func TestRunConfigShow_Merged(t *testing.T) {
	// Given: a project config overriding the strategy
	isolateConfig(t)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".rankfuse.yaml"), []byte(`version: 1
ranking:
  strategy: rrf
`), 0644))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "show"})

	// When: showing merged config
	err = cmd.Execute()

	// Then: the project override should appear
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "merged", "should indicate merged source")
	assert.Contains(t, output, "rrf", "project override should apply")
}

func TestRunConfigShow_JSONOutput(t *testing.T) {
	// Given: clean environment
	isolateConfig(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "show", "--source=defaults", "--json"})

	// When: showing default config as JSON
	err := cmd.Execute()

	// Then: should succeed and output valid JSON
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, `"ranking"`, "should contain the ranking key")
	assert.Contains(t, output, `"strategy"`, "should contain the strategy key")
}

func TestRunConfigShow_InvalidSource(t *testing.T) {
	// Given: invalid source parameter
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "show", "--source=invalid"})

	// When: showing config with invalid source
	err := cmd.Execute()

	// Then: should fail with invalid source error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid source", "should indicate invalid source")
}

func TestRunConfigShow_UserNotExists(t *testing.T) {
	// Given: no user config file
	isolateConfig(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "show", "--source=user"})

	// When: showing user config that doesn't exist
	err := cmd.Execute()

	// Then: should succeed but indicate no file found
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No user configuration", "should indicate no user config")
}

func TestRunConfigShow_ProjectNotExists(t *testing.T) {
	// Given: no project config file
	isolateConfig(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "show", "--source=project"})

	// When: showing a project config that doesn't exist
	err := cmd.Execute()

	// Then: should succeed but indicate no file found
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No project configuration", "should indicate no project config")
}

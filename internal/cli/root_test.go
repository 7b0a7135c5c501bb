package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "referral", cmd.Use)
	assert.Contains(t, cmd.Long, "beneficiary")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "create", "bulk", "list", "validate", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"driver", "db"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, "%s falls back to the environment", name)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	require.NotNil(t, serveCmd.Flags().Lookup("addr"))
	require.NotNil(t, serveCmd.Flags().Lookup("cors-origin"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigOverrides(t *testing.T) {
	t.Setenv("REFERRAL_DB_DRIVER", "postgres")
	t.Setenv("REFERRAL_DB_DSN", "postgres://localhost/referral")

	opts := &RootOptions{Driver: "sqlite3", Database: ":memory:"}
	cfg, err := opts.Config()
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, ":memory:", cfg.DBDSN)

	// Loaded once per invocation.
	opts.Database = "other.db"
	cfg, err = opts.Config()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.DBDSN)
}

func TestConfigRejectsUnknownDriver(t *testing.T) {
	opts := &RootOptions{Driver: "mysql", Database: ":memory:"}
	_, err := opts.Config()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

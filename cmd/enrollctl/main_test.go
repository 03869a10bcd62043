package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()

	for _, name := range []string{"migrate", "reconcile", "remind", "token"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestTokenCmd_RequiresSubject(t *testing.T) {
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"token"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"subject" not set`)
}

func TestMigrateCmd_DownFlag(t *testing.T) {
	cmd := migrateCmd()

	flag := cmd.Flags().Lookup("down")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestRemindCmd_Defaults(t *testing.T) {
	cmd := remindCmd()

	assert.Equal(t, "0s", cmd.Flags().Lookup("window").DefValue)
	assert.Equal(t, "500", cmd.Flags().Lookup("limit").DefValue)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "slimecats", cmd.Use)
	assert.Contains(t, cmd.Long, "signed documents")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"add", "done", "list", "boxes", "boxput", "sync", "run", "pub", "keygen"}

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

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestPubCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	pubCmd, _, err := cmd.Find([]string{"pub"})
	require.NoError(t, err)

	for _, name := range []string{"listen", "grpc-listen", "data-dir"} {
		flag := pubCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, "unset flags fall back to the config file")
	}
}

func TestKeygenCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	keygenCmd, _, err := cmd.Find([]string{"keygen"})
	require.NoError(t, err)

	schemeFlag := keygenCmd.Flags().Lookup("scheme")
	require.NotNil(t, schemeFlag)
	assert.Equal(t, "ed25519", schemeFlag.DefValue)
	assert.Equal(t, "true", keygenCmd.Annotations[annotationNoConfig])
}

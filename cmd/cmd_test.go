package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	paths := []string{
		"serve",
		"migrate",
		"views reconcile",
		"search reindex",
		"user create-admin",
		"user list",
		"user set-role",
		"user set-status",
		"version",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			args := strings.Fields(p)
			c, _, err := rootCmd.Find(args)
			require.NoError(t, err)
			assert.Equal(t, args[len(args)-1], c.Name())
		})
	}
}

func TestConfigFlagDefault(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, f)
	assert.Equal(t, "./config", f.DefValue)
	assert.Equal(t, "c", f.Shorthand)
}

func TestSetRoleRequiresTwoArgs(t *testing.T) {
	assert.Error(t, setRoleCmd.Args(setRoleCmd, []string{"a@example.com"}))
	assert.NoError(t, setRoleCmd.Args(setRoleCmd, []string{"a@example.com", "ADMIN"}))
}

package main

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestRootCommandResolvesSubcommands(t *testing.T) {
	tests := []struct {
		args     []string
		expected *cobra.Command
	}{
		{[]string{"scan"}, scanCmd},
		{[]string{"plan"}, planCmd},
		{[]string{"dry-run"}, dryRunCmd},
		{[]string{"apply"}, applyCmd},
		{[]string{"undo"}, undoCmd},
		{[]string{"config", "list"}, configListCmd},
		{[]string{"config", "show"}, configShowCmd},
		{[]string{"config", "create"}, configCreateCmd},
		{[]string{"config", "delete"}, configDeleteCmd},
		{[]string{"version"}, versionCmd},
	}

	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.args)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, cmd)
	}
}

func TestExitCodeErrCarriesCodeAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := exitErr(exitScan, cause)

	var ec *exitCodeErr
	assert.True(t, errors.As(err, &ec))
	assert.Equal(t, exitScan, ec.code)
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfigCreateHasFromFlag(t *testing.T) {
	flag := configCreateCmd.Flags().Lookup("from")
	assert.NotNil(t, flag)
}

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEvalCommand(t *testing.T) {
	out, err := execute(t, "eval", "200+10%")
	require.NoError(t, err)
	assert.Equal(t, "220\n", out)

	out, err = execute(t, "eval", "--mode", "RAD", "cos(0)")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestEvalCommandError(t *testing.T) {
	out, err := execute(t, "eval", "1/0")
	assert.Error(t, err)
	assert.Contains(t, out, "Error")
}

func TestRewriteCommand(t *testing.T) {
	out, err := execute(t, "rewrite", "--mode", "DEG", "sin(30)×2")
	require.NoError(t, err)
	assert.Equal(t, "sin((π/180)*(30))*2\n", out)
}

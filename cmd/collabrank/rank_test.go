package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) error {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRankRejectsInvalidCeiling(t *testing.T) {
	err := execute("rank", "Portsmouth U.", "--token-ceiling", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--token-ceiling")
}

func TestRankRejectsInvalidMaxResearchers(t *testing.T) {
	err := execute("rank", "Portsmouth U.", "--max-researchers", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--max-researchers")
}

func TestRankRequiresInstitution(t *testing.T) {
	err := execute("rank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "institution")
}

func TestInitRequiresIdentifier(t *testing.T) {
	err := execute("init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--bai")
}

func TestLoadUserContextMissingFile(t *testing.T) {
	_, err := loadUserContext("does-not-exist.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collabrank init")
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindServerBinary_ExplicitFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downly-server")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))

	serverBinary = path
	t.Cleanup(func() { serverBinary = "" })

	found, err := findServerBinary()
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindServerBinary_ExplicitFlagMissing(t *testing.T) {
	serverBinary = filepath.Join(t.TempDir(), "downly-server")
	t.Cleanup(func() { serverBinary = "" })

	_, err := findServerBinary()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

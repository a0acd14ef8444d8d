package cmd

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommandWiring(t *testing.T) {
	root := NewRootCommand()

	assert.Equal(t, "vulnserve", root.Use)
	assert.Equal(t, Version, root.Version)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
}

func TestServeCommandFlags(t *testing.T) {
	root := NewRootCommand()
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)

	assert.NotNil(t, serve.Flags().Lookup("addr"))
	assert.NotNil(t, serve.Flags().Lookup("runtime-url"))
}

func TestUnknownCommandFails(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"no-such-command"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
}

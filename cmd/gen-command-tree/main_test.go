package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const spec = `openapi: 3.0.3
info:
  title: Pinterest
  version: 5.14.0
paths:
  /ad_accounts/{ad_account_id}:
    get:
      operationId: ad_accounts/get
      parameters:
        - name: ad_account_id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
`

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "openapi.yaml")
	out := filepath.Join(dir, "command_tree.json")
	require.NoError(t, os.WriteFile(in, []byte(spec), 0o600))

	require.NoError(t, run(context.Background(), zap.NewNop(), in, out, false))

	tree, err := commandtree.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "5.14.0", tree.APIVersion)
	assert.Equal(t, "https://api.pinterest.com/v5", tree.BaseURL)

	op, err := tree.Find("ad-accounts", "get")
	require.NoError(t, err)
	assert.Equal(t, "/ad_accounts/{ad_account_id}", op.Path)
	assert.Equal(t, "ad-account-id", op.Params[0].Flag)
}

func TestRun_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := run(context.Background(), zap.NewNop(), filepath.Join(dir, "nope.json"), filepath.Join(dir, "out.json"), false)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "out.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRootCmd_RequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--openapi", "x.json"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out")
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/emerald/internal/domain"
)

const testProjectFile = `
[networks.mordor]
rpc_url = "https://rpc.mordor.example"
chain_id = 63

[deploy]
redeploy = "skip"
`

// runCmd executes the root command inside a fresh project directory
func runCmd(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--non-interactive"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "emerald.toml"), []byte(testProjectFile), 0644))
	return dir
}

func findCmd(root *cobra.Command, path ...string) *cobra.Command {
	cmd, _, err := root.Find(path)
	if err != nil {
		return nil
	}
	return cmd
}

func TestRootCmd_Tree(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"deploy", "contract"},
		{"deploy", "ipfs"},
		{"compile"},
		{"vault"},
		{"testrpc"},
		{"wallet"},
		{"explorer"},
		{"ipfs"},
		{"multi-geth"},
		{"networks"},
		{"list"},
		{"config", "set"},
		{"config", "remove"},
		{"version"},
	} {
		cmd := findCmd(root, path...)
		require.NotNil(t, cmd, "%v", path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	assert.Equal(t, "main", findCmd(root, "deploy").GroupID)
	assert.Equal(t, "tools", findCmd(root, "vault").GroupID)
	assert.Equal(t, "management", findCmd(root, "networks").GroupID)

	contract := findCmd(root, "deploy", "contract")
	for _, flag := range []string{"plan", "only", "network-key", "summary", "redeploy", "confirmation-timeout", "artifacts-dir", "keystore"} {
		assert.NotNil(t, contract.Flags().Lookup(flag), flag)
	}
}

func TestSkipAppInit(t *testing.T) {
	root := NewRootCmd()
	assert.True(t, skipAppInit(findCmd(root, "version")))
	assert.True(t, skipAppInit(findCmd(root, "deploy")))
	assert.False(t, skipAppInit(findCmd(root, "deploy", "contract")))
	assert.False(t, skipAppInit(findCmd(root, "networks")))
}

func TestNetworksCmd(t *testing.T) {
	out, err := runCmd(t, newProject(t), "networks", "--network", "mordor")
	require.NoError(t, err)

	assert.Contains(t, out, "mordor")
	assert.Contains(t, out, "https://rpc.mordor.example")
	assert.Contains(t, out, "63")
}

func TestConfigCmd_SetAndShow(t *testing.T) {
	dir := newProject(t)

	out, err := runCmd(t, dir, "config", "set", "network", "mordor")
	require.NoError(t, err)
	assert.Contains(t, out, "Set network to: mordor")
	assert.FileExists(t, filepath.Join(dir, ".emerald", "config.local.json"))

	// The local config now selects the network
	out, err = runCmd(t, dir, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Network:   mordor")
	assert.Contains(t, out, "Redeploy:  skip")

	out, err = runCmd(t, dir, "config", "remove", "network")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed network")
}

func TestListCmd(t *testing.T) {
	dir := newProject(t)
	artifacts := filepath.Join(dir, "build", "contracts")
	require.NoError(t, os.MkdirAll(artifacts, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(artifacts, "Token.json"), []byte(`{
    "contractName": "Token",
    "bytecode": "0x6000",
    "networks": {"63": {"address": "0x1111111111111111111111111111111111111111", "transactionHash": "0xaa"}}
}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(artifacts, "Math.json"), []byte(`{"contractName": "Math", "bytecode": "0x6000"}`), 0644))

	// mordor has a configured chain id, so no node is contacted
	out, err := runCmd(t, dir, "list", "--network", "mordor")
	require.NoError(t, err)
	assert.Contains(t, out, "mordor (networks[63])")
	assert.Contains(t, out, "0x1111111111111111111111111111111111111111")
	assert.Contains(t, out, "Not deployed: Math")
}

func TestDeployContractCmd_NothingToDeploy(t *testing.T) {
	_, err := runCmd(t, newProject(t), "deploy", "contract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emerald compile")
}

func TestDeployContractCmd_UnknownNetwork(t *testing.T) {
	_, err := runCmd(t, newProject(t), "deploy", "contract", "--network", "ropsten")
	require.Error(t, err)

	var unknown domain.UnknownNetworkErr
	assert.ErrorAs(t, err, &unknown)
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "emerald version dev")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, &domain.DeployError{
		Location: "build/contracts/Token.json",
		Kind:     domain.ConfirmationError,
		From:     domain.StateSubmitted,
		Err:      errors.New("transaction 0xabc not confirmed within 5m0s"),
	})
	assert.Equal(t, "build/contracts/Token.json\nError (confirmation error while submitted): transaction 0xabc not confirmed within 5m0s\n", buf.String())

	buf.Reset()
	PrintError(&buf, errors.New("no network selected"))
	assert.Equal(t, "Error: no network selected\n", buf.String())
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/ledger"
	"github.com/boscora/impacta-go/registry"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	mintFlags.Latitude, mintFlags.Longitude = 0, 0
	restoreFlags.Parcel, restoreFlags.Account = 0, ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--datadir", dir, "--password", "pw"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "init", "--mnemonic", testMnemonic)
	require.NoError(t, err)
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "investor")
	assert.NotContains(t, out, "mnemonic:", "restored mnemonic is not echoed")

	_, err = run(t, dir, "init", "--mnemonic", testMnemonic)
	assert.Error(t, err, "init refuses an existing wallet")

	out, err = run(t, dir, "deploy")
	require.NoError(t, err)
	assert.Contains(t, out, RegistryDeployment)
	_, err = os.Stat(filepath.Join(dir, DeploymentsFile))
	require.NoError(t, err)

	_, err = run(t, dir, "deploy")
	assert.Error(t, err, "second deploy is rejected")

	_, err = run(t, dir, "fund", "investor", "1000000000000")
	require.NoError(t, err)

	_, err = run(t, dir, "mint", "investor", "101", "--lat", "-34", "--lon", "-58")
	require.NoError(t, err)

	out, err = run(t, dir, "geo", "101")
	require.NoError(t, err)
	assert.Equal(t, "-34,-58\n", out)

	out, err = run(t, dir, "balance", "investor")
	require.NoError(t, err)
	assert.Contains(t, out, "tokens  500000000000")
	assert.Contains(t, out, "parcels 1")

	_, err = run(t, dir, "impact", "set", "101", "1500", "450", "3")
	require.NoError(t, err)
	out, err = run(t, dir, "impact", "get", "101")
	require.NoError(t, err)
	assert.Contains(t, out, "biomass      1500 g")
	assert.Contains(t, out, "health       Planted")

	_, err = run(t, dir, "mint", "investor", "501")
	assert.Error(t, err)

	_, err = run(t, dir, "extend", "101")
	require.NoError(t, err)

	out, err = run(t, dir, "ledger", "advance", "10")
	require.NoError(t, err)
	out2, err := run(t, dir, "ledger", "status")
	require.NoError(t, err)
	assert.Contains(t, out2, out)
}

func TestLoadDeployments(t *testing.T) {
	dir := t.TempDir()

	got, err := loadDeployments(dir)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DeploymentsFile), []byte(`{"token":"1abc"}`), 0600))
	got, err = loadDeployments(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]auth.Address{"token": "1abc"}, got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DeploymentsFile), []byte(`{`), 0600))
	_, err = loadDeployments(dir)
	assert.Error(t, err)
}

func TestParseHelpers(t *testing.T) {
	v, err := parseAmount("500000000000")
	require.NoError(t, err)
	assert.Equal(t, "500000000000", v.String())
	_, err = parseAmount("5e9")
	assert.Error(t, err)

	id, err := parseID("101")
	require.NoError(t, err)
	assert.Equal(t, uint32(101), id)
	_, err = parseID("4294967296")
	assert.Error(t, err)
}

func TestCLI_RestoreArchivedParcel(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "init", "--mnemonic", testMnemonic)
	require.NoError(t, err)
	_, err = run(t, dir, "deploy")
	require.NoError(t, err)
	_, err = run(t, dir, "fund", "investor", "500000000000")
	require.NoError(t, err)
	_, err = run(t, dir, "mint", "investor", "7", "--lat", "12", "--lon", "34")
	require.NoError(t, err)

	_, err = run(t, dir, "ledger", "advance", strconv.FormatUint(uint64(registry.GeoTTL+1), 10))
	require.NoError(t, err)
	_, err = run(t, dir, "geo", "7")
	assert.ErrorIs(t, err, ledger.ErrEntryArchived)

	_, err = run(t, dir, "restore", "registry", "--parcel", "7")
	require.NoError(t, err)
	out, err := run(t, dir, "geo", "7")
	require.NoError(t, err)
	assert.Equal(t, "12,34\n", out)

	_, err = run(t, dir, "extend", "7")
	assert.ErrorIs(t, err, ledger.ErrEntryArchived, "oracle instance is still archived")
	_, err = run(t, dir, "restore", "oracle")
	require.NoError(t, err)
	_, err = run(t, dir, "extend", "7")
	require.NoError(t, err)

	_, err = run(t, dir, "restore", "token", "--account", "investor")
	require.NoError(t, err)
	out, err = run(t, dir, "balance", "investor")
	require.NoError(t, err)
	assert.Contains(t, out, "parcels 1")

	_, err = run(t, dir, "restore", "token", "--parcel", "7")
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tree, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "info", tree.Log.Level)
	assert.Equal(t, ":8087", tree.Server.Addr)
	assert.Nil(t, tree.Channels.Feishu)
}

func TestLoadPreservesAccountOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[channels.feishu]
enabled = true
appId = "cli_base"
appSecret = "base_secret"

[channels.feishu.accounts.zeta]
name = "Zeta"

[channels.feishu.accounts.alpha]
appId = "cli_alpha"
appSecret = "alpha_secret"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	tree, err := Load(path)
	require.NoError(t, err)
	section := tree.Channels.Feishu
	require.NotNil(t, section)
	assert.Equal(t, []string{"zeta", "alpha"}, ListAccountIDs(section))

	zeta := ResolveAccount(section, "zeta")
	assert.Equal(t, "cli_base", zeta.AppID)
	assert.Equal(t, "Zeta", zeta.Name)
}

func TestLoadRejectsInvalidEventURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[channels.feishu]
appId = "cli_base"
appSecret = "base_secret"
eventUrl = "not a url"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, Save(path, sampleTree()))

	loaded, err := Load(path)
	require.NoError(t, err)
	got := ResolveAccount(loaded.Channels.Feishu, "support")
	assert.Equal(t, "cli_support", got.AppID)
	assert.Equal(t, "Support Bot", got.Name)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns a tree with the gateway's baseline settings.
func Default() *Tree {
	return &Tree{
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8087"},
		Status: StatusConfig{ProbeSchedule: "@every 5m"},
	}
}

// Load reads a TOML configuration file, layering it over Default. A missing
// file yields the defaults.
func Load(path string) (*Tree, error) {
	tree := Default()
	meta, err := toml.DecodeFile(path, tree)
	if err != nil {
		if os.IsNotExist(err) {
			return tree, nil
		}
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if section := tree.Channels.Feishu; section != nil {
		section.SetAccountOrder(accountKeyOrder(meta))
	}
	if err := Validate(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Save writes the tree back to disk, creating parent directories as needed.
func Save(path string, tree *Tree) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(tree); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate runs struct validation over the tree.
func Validate(tree *Tree) error {
	if err := validate.Struct(tree); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// accountKeyOrder extracts the order account tables appeared in the file.
func accountKeyOrder(meta toml.MetaData) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, key := range meta.Keys() {
		parts := []string(key)
		if len(parts) < 4 {
			continue
		}
		if parts[0] != "channels" || parts[1] != "feishu" || parts[2] != "accounts" {
			continue
		}
		id := strings.TrimSpace(parts[3])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

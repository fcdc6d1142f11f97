package plugin

import (
	"log/slog"

	"github.com/openclaw/openclaw-feishu/internal/config"
)

// ConfigLoader hands the plugin the current configuration tree. The host
// owns the tree; plugins treat it as read-only and apply edits through the
// descriptor's mutation hooks.
type ConfigLoader interface {
	Tree() *config.Tree
}

// Runtime bundles the host services handed to a plugin at registration.
type Runtime struct {
	Logger   *slog.Logger
	Config   ConfigLoader
	Messages MessageIntake
	Webhooks *WebhookRegistry
}

// StaticConfig is a ConfigLoader over a fixed tree, used by the standalone
// gateway and in tests.
type StaticConfig struct {
	tree *config.Tree
}

// NewStaticConfig wraps a tree in a ConfigLoader.
func NewStaticConfig(tree *config.Tree) *StaticConfig {
	return &StaticConfig{tree: tree}
}

// Tree returns the wrapped tree.
func (s *StaticConfig) Tree() *config.Tree {
	return s.tree
}

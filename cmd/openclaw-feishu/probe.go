package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/feishu"
	"github.com/openclaw/openclaw-feishu/internal/logger"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe [account-id...]",
	Short: "Check account credentials against the Feishu API",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadConfig()
		if err != nil {
			return err
		}
		section := tree.FeishuSection()

		ids := args
		if len(ids) == 0 {
			ids = config.ListAccountIDs(section)
		}

		runtime := plugin.Runtime{
			Logger:   logger.L,
			Config:   plugin.NewStaticConfig(tree),
			Webhooks: plugin.NewWebhookRegistry(),
		}
		p := feishu.New(runtime)

		failed := 0
		for _, id := range ids {
			account := config.ResolveAccount(section, id)
			result := p.ProbeAccount(cmd.Context(), account, probeTimeout)
			if result.OK {
				fmt.Printf("%s: ok\n", account.AccountID)
				continue
			}
			failed++
			fmt.Printf("%s: %s\n", account.AccountID, result.Error)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d accounts failed the probe", failed, len(ids))
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 10*time.Second, "probe timeout per account")
}

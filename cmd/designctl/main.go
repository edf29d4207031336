package main

import (
	"os"

	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "designctl",
		Short:         "Quick Printz 运维工具：报价、画廊与联系表单",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newQuoteCommand(),
		newQuoteBagCommand(),
		newDesignsCommand(),
		newContactsCommand(),
		newForwardCommand(),
		newMigrateCommand(),
	)
	return root
}

// loadConfig 按服务端同样的方式加载配置与日志
func loadConfig() *config.Config {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	return cfg
}

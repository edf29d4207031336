package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/quickprintz/storefront/internal/app"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiDim     = "\033[2m"
	ansiGreen   = "\033[32m"
	ansiCyan    = "\033[36m"
	ansiMagenta = "\033[95m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner(mode)

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if isWeakSecret(cfg.Cart.SessionSecret) {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("购物车会话密钥过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
		stdLog.Printf("警告: 购物车会话密钥过弱或仍为默认值，建议在生产环境中更换")
	}

	// 初始化数据库（联系表单与数据库购物车槽依赖）
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(nil); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiMagenta + "╔════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiMagenta + "║        Quick Printz Storefront API         ║" + ansiReset)
	fmt.Println(ansiMagenta + "╚════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + "  cart · pricing · designs · contact" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "mode: " + mode + ansiReset)
	fmt.Println(ansiDim + "----------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}

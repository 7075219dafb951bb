package app

import (
	"os"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"

	"go.uber.org/zap"
)

const (
	ModeAll     = "all"
	ModeAPI     = "api"
	ModeWorker  = "worker"
	ModeMockAPI = "mockapi"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}

// listenAddr 当前模式下 HTTP 监听地址
func listenAddr(cfg *config.Config, mode string) string {
	if mode == ModeMockAPI {
		return cfg.MockAPI.Host + ":" + cfg.MockAPI.Port
	}
	return cfg.Server.Host + ":" + cfg.Server.Port
}

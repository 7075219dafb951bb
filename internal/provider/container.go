package provider

import (
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/notify"
	"github.com/storefront-next/internal/pricing"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/remote"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// 托管集合
	CartAPI    *remote.CartAPI
	ProductAPI *remote.ProductAPI
	OrderAPI   *remote.OrderAPI
	UserAPI    *remote.UserAPI

	// Services
	Notifier        *notify.Hub
	Sessions        *service.SessionRegistry
	Reconciler      *service.ClearCartReconciler
	CatalogService  *service.CatalogService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	AuthService     *service.AuthService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存（会话镜像与登录限流）
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		sweepDelay := time.Duration(cfg.Sync.SweepDelaySeconds) * time.Second
		qc, err := queue.NewClient(&cfg.Queue, sweepDelay)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化托管集合适配器
	c.initRemotes()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRemotes() {
	client := remote.NewClient(remote.ClientOptions{
		Timeout: time.Duration(c.Config.Remote.TimeoutSeconds) * time.Second,
		Tracing: c.Config.Remote.Tracing,
	})
	c.CartAPI = remote.NewCartAPI(client, c.Config.Remote.CartURL)
	c.ProductAPI = remote.NewProductAPI(client, c.Config.Remote.ProductURL)
	c.OrderAPI = remote.NewOrderAPI(client, c.Config.Remote.OrderURL)
	c.UserAPI = remote.NewUserAPI(client, c.Config.Remote.UserURL)
}

func (c *Container) initServices() {
	nc := c.Config.Notification
	c.Notifier = notify.NewHub(notify.Durations{
		Success: time.Duration(nc.SuccessMS) * time.Millisecond,
		Error:   time.Duration(nc.ErrorMS) * time.Millisecond,
		Warning: time.Duration(nc.WarningMS) * time.Millisecond,
		Info:    time.Duration(nc.InfoMS) * time.Millisecond,
	}, nc.BufferSize)

	var mirror service.StateMirror
	if cache.Enabled() {
		mirror = cache.Mirror{}
	}
	c.Sessions = service.NewSessionRegistry(mirror)

	sc := c.Config.Sync
	c.Reconciler = service.NewClearCartReconciler(c.CartAPI, service.ReconcilerOptions{
		MaxAttempts: sc.ClearMaxAttempts,
		SettleDelay: time.Duration(sc.SettleDelayMS) * time.Millisecond,
		Concurrency: sc.DeleteConcurrency,
	})

	pc := c.Config.Pricing
	rules := pricing.NewRules(pc.Tier1Threshold, pc.Tier2Threshold, pc.Tier1Rate, pc.Tier2Rate, pc.CurrencySymbol)

	var enqueuer service.TaskEnqueuer
	if c.QueueClient != nil {
		enqueuer = c.QueueClient
	}

	c.CatalogService = service.NewCatalogService(c.ProductAPI)
	c.CartService = service.NewCartService(c.CartAPI, c.CatalogService, c.Sessions, c.Reconciler, rules, c.Notifier)
	c.CheckoutService = service.NewCheckoutService(c.OrderAPI, c.CatalogService, c.CartService, enqueuer, c.Notifier)
	c.AuthService = service.NewAuthService(c.Config, c.UserAPI, c.Sessions, c.CartService)
}

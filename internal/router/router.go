package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sf"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "Too many login attempts, please try again in %d seconds",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": c.Sessions.Count(),
		})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		apiV1.POST("/auth/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("email")), handler.Login)
		apiV1.GET("/products", handler.GetProducts)
		apiV1.GET("/products/:id", handler.GetProduct)
		apiV1.GET("/categories", handler.GetCategories)

		// 登录用户接口
		authorized := apiV1.Group("")
		authorized.Use(UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService))
		{
			authorized.POST("/auth/logout", handler.Logout)
			authorized.GET("/me", handler.GetCurrentUser)
			authorized.PUT("/me/profile", handler.UpdateProfile)

			authorized.GET("/cart", handler.GetCart)
			authorized.DELETE("/cart", handler.ClearCart)
			authorized.GET("/cart/count", handler.GetCartCount)
			authorized.POST("/cart/items", handler.AddCartItem)
			authorized.PUT("/cart/items/:product_id", handler.UpdateCartItem)
			authorized.DELETE("/cart/items/:product_id", handler.RemoveCartItem)
			authorized.POST("/cart/validate", handler.ValidateCart)

			authorized.POST("/orders", handler.CreateOrder)
			authorized.GET("/orders", handler.ListOrders)
			authorized.GET("/orders/:id", handler.GetOrder)
			authorized.PATCH("/orders/:id/status", handler.UpdateOrderStatus)

			authorized.GET("/notifications/stream", handler.StreamNotifications)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Route not found")
	})

	return r
}

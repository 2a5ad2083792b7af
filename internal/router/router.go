package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/portal-unk/portal-api/docs"
	"github.com/portal-unk/portal-api/internal/config"
	"github.com/portal-unk/portal-api/internal/handlers"
	"github.com/portal-unk/portal-api/internal/middlewares"
	"github.com/portal-unk/portal-api/internal/models"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 公开分享接口的限流阈值，防止对 4 位 PIN 的暴力尝试
const shareValidateRPM = 30

// InitRouter 注册全部路由
func InitRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	djHandler *handlers.DJHandler,
	mediaHandler *handlers.MediaHandler,
	shareLinkHandler *handlers.ShareLinkHandler,
	sharePublicHandler *handlers.SharePublicHandler,
	cfg *config.Config,
) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.Default()

	// 全局中间件
	router.Use(middlewares.CORSMiddleware())

	// Health Check 路由
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		// 认证相关路由 (无需认证)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// 公开分享访问路由 (无需认证，带限流)
		shareGroup := v1.Group("/share")
		shareGroup.Use(middlewares.RateLimitMiddleware(shareValidateRPM))
		{
			shareGroup.POST("/validate", sharePublicHandler.Validate)
			shareGroup.GET("/:share_token/download", sharePublicHandler.DownloadPressKit)
		}

		// 需要认证的路由组
		authenticated := v1.Group("/")
		authenticated.Use(middlewares.AuthMiddleware(cfg))

		// 用户相关路由
		userGroup := authenticated.Group("/users")
		{
			userGroup.GET("/me", userHandler.GetMe)
		}

		// DJ 资料与签约路由
		djGroup := authenticated.Group("/djs")
		{
			// 只有 DJ 账号能创建资料
			djGroup.POST("/profile", middlewares.RequireRole(models.RoleDJ), djHandler.CreateProfile)

			// 签约与名册为制作人专属
			djGroup.POST("/associate", middlewares.RequireRole(models.RoleProducer), djHandler.Associate)
			djGroup.GET("/my", middlewares.RequireRole(models.RoleProducer), djHandler.ListMyDJs)
		}

		// 媒体资料路由 (DJ 管理自己的资料库)
		mediaGroup := authenticated.Group("/media")
		{
			mediaGroup.POST("/upload", middlewares.RequireRole(models.RoleDJ), mediaHandler.Upload)
			mediaGroup.GET("/my", middlewares.RequireRole(models.RoleDJ), mediaHandler.ListMine)
			mediaGroup.DELETE("/:media_id", middlewares.RequireRole(models.RoleDJ), mediaHandler.Delete)

			mediaGroup.GET("/search", mediaHandler.Search)
			mediaGroup.GET("/:media_id/download", mediaHandler.Download)
		}

		// 分享链接管理路由 (制作人专属)
		shareLinkGroup := authenticated.Group("/share-links")
		shareLinkGroup.Use(middlewares.RequireRole(models.RoleProducer))
		{
			shareLinkGroup.POST("", shareLinkHandler.IssueLink)
			shareLinkGroup.GET("/my", shareLinkHandler.ListMyLinks)
			shareLinkGroup.DELETE("/:link_id", shareLinkHandler.RevokeLink)
		}

		// 运维接口：立即触发一次过期链接清理
		adminGroup := authenticated.Group("/admin")
		adminGroup.Use(middlewares.RequireRole(models.RoleProducer))
		{
			adminGroup.POST("/share-links/sweep", shareLinkHandler.SweepExpired)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		xerr.Error(c, http.StatusNotFound, xerr.NotFoundCode, "Route not found")
	})

	return router
}

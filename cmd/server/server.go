package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/portal-unk/portal-api/internal/config"
	"github.com/portal-unk/portal-api/internal/handlers"
	"github.com/portal-unk/portal-api/internal/pkg/cache"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/mq"
	"github.com/portal-unk/portal-api/internal/pkg/mq/worker"
	"github.com/portal-unk/portal-api/internal/repositories"
	"github.com/portal-unk/portal-api/internal/router"
	"github.com/portal-unk/portal-api/internal/services/admin"
	"github.com/portal-unk/portal-api/internal/services/media"
	"github.com/portal-unk/portal-api/internal/services/roster"
	"github.com/portal-unk/portal-api/internal/services/share"
	"github.com/portal-unk/portal-api/internal/setup"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	router         *gin.Engine
	httpServer     *http.Server
	db             *gorm.DB
	redisClient    *redis.Client
	rabbitMQClient *mq.RabbitMQClient
	cancelWorkers  context.CancelFunc
}

// NewServer 负责构建所有依赖
func NewServer(cfg *config.Config) (*Server, error) {
	// 初始化数据库连接
	mysqlDB, err := setup.InitMySQL(&cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
	}

	// 初始化 Redis 连接
	redisClient, err := setup.InitRedis(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// 初始化 Elasticsearch（未配置时为 nil，搜索功能降级）
	esClient, err := setup.InitElasticsearch(&cfg.Elasticsearch)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Elasticsearch: %w", err)
	}

	// 初始化 RabbitMQ
	rabbitMQClient, err := mq.NewRabbitMQClient(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}

	// 初始化对象存储
	storageService, err := setup.InitStorage(cfg)
	if err != nil {
		logger.Fatal("failed to initialize storageService", zap.Error(err))
	}

	// 初始化 Repositories
	userRepo := repositories.NewUserRepository(mysqlDB)
	djRepo := repositories.NewDJRepository(mysqlDB)
	mediaRepo := repositories.NewMediaRepository(mysqlDB)
	shareLinkRepo := repositories.NewShareLinkRepository(mysqlDB)
	accessLogRepo := repositories.NewAccessLogRepository(mysqlDB)

	// 初始化 Services
	cacheService := cache.NewRedisCache(redisClient)
	authService := admin.NewAuthService(userRepo, cfg)
	userService := admin.NewUserService(userRepo)
	djService := roster.NewDJService(djRepo)
	mediaService := media.NewMediaService(mediaRepo, storageService, cacheService, esClient, cfg)
	shareLinkService := share.NewShareLinkService(shareLinkRepo, djRepo, mediaService, rabbitMQClient, cfg)

	// 初始化 Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	djHandler := handlers.NewDJHandler(djService)
	mediaHandler := handlers.NewMediaHandler(mediaService, djService)
	shareLinkHandler := handlers.NewShareLinkHandler(shareLinkService)
	sharePublicHandler := handlers.NewSharePublicHandler(shareLinkService, mediaService)

	// 启动所有后台 Worker
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	worker.StartAllWorkers(workerCtx, cfg, rabbitMQClient, shareLinkRepo, accessLogRepo)

	// 初始化 Gin 引擎和注册路由
	engine := router.InitRouter(authHandler, userHandler, djHandler, mediaHandler, shareLinkHandler, sharePublicHandler, cfg)

	addr := ":" + cfg.Server.Port
	logger.Info(fmt.Sprintf("Server is running on %s", addr))
	httpServer := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	return &Server{
		router:         engine,
		httpServer:     httpServer,
		db:             mysqlDB,
		redisClient:    redisClient,
		rabbitMQClient: rabbitMQClient,
		cancelWorkers:  cancelWorkers,
	}, nil
}

// Run 启动服务器和 Worker，并处理优雅关机
func (s *Server) Run(ctx context.Context, stopChan chan os.Signal) {
	// 确保在应用关闭时，所有连接都被释放
	// GORM v2 依赖连接池，通常不需要手动关闭。Redis和MQ需要
	defer s.rabbitMQClient.Close()
	defer s.redisClient.Close()

	// 启动 HTTP 服务器
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// 等待停止信号
	<-stopChan
	logger.Info("Shutting down server...")

	// 先停掉后台 Worker，再优雅关闭 HTTP
	s.cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited gracefully")
}

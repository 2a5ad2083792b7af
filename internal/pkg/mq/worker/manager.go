package worker

import (
	"context"

	"github.com/portal-unk/portal-api/internal/config"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/mq"
	"github.com/portal-unk/portal-api/internal/repositories"
)

// StartAllWorkers 启动应用中所有定义的后台 Worker
func StartAllWorkers(
	ctx context.Context,
	cfg *config.Config,
	mqClient *mq.RabbitMQClient,
	shareLinkRepo repositories.ShareLinkRepository,
	accessLogRepo repositories.AccessLogRepository,
) {
	// --- 启动访问审计 Worker ---
	accessLogWorker := NewAccessLogWorker(mqClient, accessLogRepo)
	go accessLogWorker.Start()

	// --- 启动过期链接清理 Worker ---
	sweeperWorker := NewSweeperWorker(shareLinkRepo, cfg)
	go sweeperWorker.Start(ctx)

	logger.Info("所有后台工作进程已启动。")
}

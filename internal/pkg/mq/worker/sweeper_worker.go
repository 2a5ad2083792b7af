package worker

import (
	"context"
	"time"

	"github.com/portal-unk/portal-api/internal/config"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/repositories"
	"go.uber.org/zap"
)

// SweeperWorker 周期性删除已过期的分享链接
// 删除条件是纯时间谓词，运行失败留给下一个周期重试即可
type SweeperWorker struct {
	shareLinkRepo repositories.ShareLinkRepository
	interval      time.Duration
}

func NewSweeperWorker(shareLinkRepo repositories.ShareLinkRepository, cfg *config.Config) *SweeperWorker {
	interval := cfg.Sweeper.Interval
	if interval <= 0 {
		interval = 4 * time.Hour
	}
	return &SweeperWorker{
		shareLinkRepo: shareLinkRepo,
		interval:      interval,
	}
}

func (w *SweeperWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("过期链接清理任务已启动", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("过期链接清理任务已停止")
			return
		case <-ticker.C:
			w.sweepOnce()
		}
	}
}

func (w *SweeperWorker) sweepOnce() {
	deleted, err := w.shareLinkRepo.DeleteExpired(time.Now())
	if err != nil {
		// 留给下一个周期重试
		logger.Error("清理过期分享链接失败", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Info("已清理过期分享链接", zap.Int64("deletedCount", deleted))
	}
}

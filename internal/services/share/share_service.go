package share

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/portal-unk/portal-api/internal/config"
	"github.com/portal-unk/portal-api/internal/models"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/mq"
	"github.com/portal-unk/portal-api/internal/pkg/utils"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/portal-unk/portal-api/internal/repositories"
	"go.uber.org/zap"
)

// ShareAccessQueueName 验证成功后发布访问事件的队列
const ShareAccessQueueName = "share_access_queue"

// MediaLister 是分享服务对媒体服务的最小依赖
type MediaLister interface {
	ListByDJ(ctx context.Context, djID uint64) ([]models.MediaFile, error)
}

// ValidationResult 是访问验证的统一结果
// 令牌不存在、已过期、PIN 错误三种情况都只体现为 Valid=false，
// 不暴露具体原因，防止枚举攻击
type ValidationResult struct {
	Valid bool               `json:"valid"`
	DJ    *models.DJProfile  `json:"dj,omitempty"`
	Media []models.MediaFile `json:"media,omitempty"`
}

// IssuedLink 是签发结果，PIN 明文只在这里出现一次
type IssuedLink struct {
	ShareToken string    `json:"share_token"`
	PIN        string    `json:"pin"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ShareLinkService 定义了媒体分享链接服务需要实现的接口
type ShareLinkService interface {
	// IssueLink 为 DJ 签发一个新的分享链接
	// pin 为空时随机生成；返回的明文 PIN 仅此一次，之后不可再取
	IssueLink(ctx context.Context, producerID, djID uint64, days int, pin string) (*IssuedLink, error)
	// ValidateAccess 验证令牌与 PIN，成功时原子累加访问计数并返回媒体列表
	ValidateAccess(ctx context.Context, token, pin, clientIP string) (*ValidationResult, error)
	// RevokeLink 撤销链接，仅限创建者本人
	RevokeLink(ctx context.Context, producerID, linkID uint64) error
	// ListProducerLinks 列出制作人创建的所有分享链接
	ListProducerLinks(producerID uint64, page, pageSize int) ([]models.SharedMediaLink, int64, error)
	// SweepExpired 删除所有已过期的链接，返回删除数量
	SweepExpired(ctx context.Context) (int64, error)
}

type shareLinkService struct {
	shareLinkRepo repositories.ShareLinkRepository
	djRepo        repositories.DJRepository
	mediaLister   MediaLister
	publisher     mq.Publisher // 可以为 nil，此时跳过访问事件发布
	cfg           *config.Config
}

var _ ShareLinkService = (*shareLinkService)(nil)

// NewShareLinkService 创建一个新的 ShareLinkService 实例
func NewShareLinkService(shareLinkRepo repositories.ShareLinkRepository, djRepo repositories.DJRepository, mediaLister MediaLister, publisher mq.Publisher, cfg *config.Config) ShareLinkService {
	return &shareLinkService{
		shareLinkRepo: shareLinkRepo,
		djRepo:        djRepo,
		mediaLister:   mediaLister,
		publisher:     publisher,
		cfg:           cfg,
	}
}

func (s *shareLinkService) durationBounds() (int, int) {
	minDays, maxDays := s.cfg.ShareLink.MinDays, s.cfg.ShareLink.MaxDays
	if minDays <= 0 {
		minDays = 1
	}
	if maxDays <= 0 {
		maxDays = 7
	}
	return minDays, maxDays
}

// IssueLink 处理分享链接签发的业务逻辑
func (s *shareLinkService) IssueLink(ctx context.Context, producerID, djID uint64, days int, pin string) (*IssuedLink, error) {
	// 1. 校验有效期范围
	minDays, maxDays := s.durationBounds()
	if days < minDays || days > maxDays {
		return nil, xerr.ErrInvalidShareDuration
	}

	// 2. 校验或生成 PIN
	if pin == "" {
		generated, err := utils.GeneratePIN()
		if err != nil {
			logger.Error("IssueLink: 生成随机PIN失败", zap.Error(err))
			return nil, fmt.Errorf("生成PIN失败: %w", err)
		}
		pin = generated
	} else if !utils.IsValidPIN(pin) {
		return nil, xerr.ErrInvalidPIN
	}

	// 3. 验证 DJ 存在且与当前制作人签约
	profile, err := s.djRepo.FindProfileByID(djID)
	if err != nil {
		return nil, fmt.Errorf("查询 DJ 资料失败: %w", err)
	}
	if profile == nil {
		return nil, xerr.ErrDJNotFound
	}
	associated, err := s.djRepo.IsAssociated(producerID, djID)
	if err != nil {
		return nil, fmt.Errorf("查询签约关系失败: %w", err)
	}
	if !associated {
		return nil, xerr.ErrDJNotAssociated
	}

	// 4. PIN 只保存哈希，明文随响应返回后即不可恢复
	passwordHash, err := utils.HashPassword(pin)
	if err != nil {
		return nil, fmt.Errorf("PIN 哈希失败: %w", err)
	}

	now := time.Now()
	link := &models.SharedMediaLink{
		DJID:         djID,
		ProducerID:   producerID,
		ShareToken:   uuid.New().String(), // 生成唯一的分享令牌
		PasswordHash: passwordHash,
		ExpiresAt:    now.Add(time.Duration(days) * 24 * time.Hour),
	}

	// 5. 保存记录，失败时不留下部分状态
	if err := s.shareLinkRepo.Create(link); err != nil {
		logger.Error("IssueLink: 创建分享链接记录失败", zap.Error(err))
		return nil, fmt.Errorf("创建分享链接失败: %w", err)
	}

	logger.Info("IssueLink: 分享链接签发成功",
		zap.Uint64("shareLinkID", link.ID),
		zap.Uint64("djID", djID),
		zap.Uint64("producerID", producerID),
		zap.Time("expiresAt", link.ExpiresAt))

	return &IssuedLink{
		ShareToken: link.ShareToken,
		PIN:        pin,
		ExpiresAt:  link.ExpiresAt,
	}, nil
}

// ValidateAccess 处理访问验证的业务逻辑
// 所有"无效"情形统一返回 Valid=false，不抛错误
func (s *shareLinkService) ValidateAccess(ctx context.Context, token, pin, clientIP string) (*ValidationResult, error) {
	invalid := &ValidationResult{Valid: false}

	link, err := s.shareLinkRepo.FindByToken(token)
	if err != nil {
		return nil, fmt.Errorf("查询分享链接失败: %w", err)
	}
	if link == nil {
		return invalid, nil
	}

	// 过期的链接即使尚未被清理也不可用；删除交给清理任务
	now := time.Now()
	if link.IsExpired(now) {
		return invalid, nil
	}

	// bcrypt 比较本身是恒定时间的
	if !utils.CheckPasswordHash(pin, link.PasswordHash) {
		return invalid, nil
	}

	// 成功路径：数据库侧原子累加，避免并发验证时丢失计数
	if err := s.shareLinkRepo.RecordAccess(token, now); err != nil {
		logger.Error("ValidateAccess: 更新访问计数失败",
			zap.Uint64("shareLinkID", link.ID), zap.Error(err))
		return nil, fmt.Errorf("更新访问计数失败: %w", err)
	}

	profile, err := s.djRepo.FindProfileByID(link.DJID)
	if err != nil {
		return nil, fmt.Errorf("查询 DJ 资料失败: %w", err)
	}
	mediaList, err := s.mediaLister.ListByDJ(ctx, link.DJID)
	if err != nil {
		return nil, fmt.Errorf("查询媒体列表失败: %w", err)
	}

	// 审计事件尽力发布，不影响验证结果
	s.publishAccessEvent(link, clientIP, now)

	logger.Info("ValidateAccess: 分享链接验证成功",
		zap.Uint64("shareLinkID", link.ID), zap.Uint64("djID", link.DJID))

	return &ValidationResult{
		Valid: true,
		DJ:    profile,
		Media: mediaList,
	}, nil
}

func (s *shareLinkService) publishAccessEvent(link *models.SharedMediaLink, clientIP string, accessedAt time.Time) {
	if s.publisher == nil {
		return
	}
	event := models.ShareAccessEvent{
		ShareLinkID: link.ID,
		DJID:        link.DJID,
		ProducerID:  link.ProducerID,
		ClientIP:    clientIP,
		AccessedAt:  accessedAt,
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("publishAccessEvent: 序列化访问事件失败", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ShareAccessQueueName, body); err != nil {
		logger.Error("publishAccessEvent: 发布访问事件失败",
			zap.Uint64("shareLinkID", link.ID), zap.Error(err))
	}
}

// RevokeLink 撤销一个分享链接
// 删除条件同时带上 producer_id，非所有者与不存在的链接得到同一个结果
func (s *shareLinkService) RevokeLink(ctx context.Context, producerID, linkID uint64) error {
	rows, err := s.shareLinkRepo.DeleteByIDAndProducer(linkID, producerID)
	if err != nil {
		logger.Error("RevokeLink: 删除分享链接失败",
			zap.Uint64("linkID", linkID), zap.Error(err))
		return fmt.Errorf("撤销分享链接失败: %w", err)
	}
	if rows == 0 {
		return xerr.ErrShareLinkNotFound
	}

	logger.Info("RevokeLink: 分享链接撤销成功",
		zap.Uint64("linkID", linkID), zap.Uint64("producerID", producerID))
	return nil
}

// ListProducerLinks 获取制作人创建的所有分享链接列表（分页）
func (s *shareLinkService) ListProducerLinks(producerID uint64, page, pageSize int) ([]models.SharedMediaLink, int64, error) {
	links, total, err := s.shareLinkRepo.FindAllByProducerID(producerID, page, pageSize)
	if err != nil {
		logger.Error("ListProducerLinks: 查询分享链接列表失败",
			zap.Uint64("producerID", producerID), zap.Error(err))
		return nil, 0, fmt.Errorf("查询分享链接列表失败: %w", err)
	}
	return links, total, nil
}

// SweepExpired 删除所有已过期的分享链接
// 纯时间谓词删除，幂等且可安全重试
func (s *shareLinkService) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := s.shareLinkRepo.DeleteExpired(time.Now())
	if err != nil {
		logger.Error("SweepExpired: 清理过期分享链接失败", zap.Error(err))
		return 0, fmt.Errorf("清理过期分享链接失败: %w", err)
	}
	if deleted > 0 {
		logger.Info("SweepExpired: 已清理过期分享链接", zap.Int64("deletedCount", deleted))
	}
	return deleted, nil
}

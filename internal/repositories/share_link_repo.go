package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/portal-unk/portal-api/internal/models"
	"gorm.io/gorm"
)

type ShareLinkRepository interface {
	Create(link *models.SharedMediaLink) error
	FindByToken(token string) (*models.SharedMediaLink, error)
	FindAllByProducerID(producerID uint64, page, pageSize int) ([]models.SharedMediaLink, int64, error)
	// RecordAccess 原子地累加访问计数并更新最后访问时间
	RecordAccess(token string, accessedAt time.Time) error
	// DeleteByIDAndProducer 删除指定链接，删除范围限定为创建者本人
	// 返回受影响的行数，0 表示链接不存在或不属于该制作人
	DeleteByIDAndProducer(id, producerID uint64) (int64, error)
	// DeleteExpired 删除所有已过期的链接，返回删除的行数
	DeleteExpired(now time.Time) (int64, error)
}

type shareLinkRepository struct {
	db *gorm.DB
}

var _ ShareLinkRepository = (*shareLinkRepository)(nil)

// NewShareLinkRepository 创建新的 shareLinkRepository 实例
func NewShareLinkRepository(db *gorm.DB) ShareLinkRepository {
	return &shareLinkRepository{db: db}
}

// 创建新的数据库记录
func (r *shareLinkRepository) Create(link *models.SharedMediaLink) error {
	return r.db.Create(link).Error
}

// 根据分享令牌查找记录
func (r *shareLinkRepository) FindByToken(token string) (*models.SharedMediaLink, error) {
	var link models.SharedMediaLink
	err := r.db.Where("share_token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 未找到时返回 nil, nil
		}
		return nil, fmt.Errorf("查询分享链接失败: %w", err)
	}
	return &link, nil
}

// 查找特定制作人创建的所有分享链接(分页)
func (r *shareLinkRepository) FindAllByProducerID(producerID uint64, page, pageSize int) ([]models.SharedMediaLink, int64, error) {
	var links []models.SharedMediaLink
	var total int64

	offset := (page - 1) * pageSize
	query := r.db.Model(&models.SharedMediaLink{}).Where("producer_id = ?", producerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计分享链接总数失败: %w", err)
	}

	err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&links).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询分享链接列表失败: %w", err)
	}
	return links, total, nil
}

// RecordAccess 通过单条 UPDATE 语句累加计数
// 并发验证同一令牌时依赖数据库侧的原子自增，避免读-改-写丢失更新
func (r *shareLinkRepository) RecordAccess(token string, accessedAt time.Time) error {
	return r.db.Model(&models.SharedMediaLink{}).
		Where("share_token = ?", token).
		UpdateColumns(map[string]any{
			"accessed_count":   gorm.Expr("accessed_count + 1"),
			"last_accessed_at": accessedAt,
		}).Error
}

// DeleteByIDAndProducer 删除条件同时带上 producer_id
// 非所有者的删除影响0行，调用方据此返回统一的失败结果
func (r *shareLinkRepository) DeleteByIDAndProducer(id, producerID uint64) (int64, error) {
	result := r.db.Where("id = ? AND producer_id = ?", id, producerID).
		Delete(&models.SharedMediaLink{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除分享链接失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteExpired 按时间谓词批量删除，天然幂等，可安全重试
func (r *shareLinkRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.SharedMediaLink{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理过期分享链接失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

package repositories

import (
	"errors"
	"fmt"

	"github.com/portal-unk/portal-api/internal/models"
	"gorm.io/gorm"
)

type DJRepository interface {
	CreateProfile(profile *models.DJProfile) error
	FindProfileByID(djID uint64) (*models.DJProfile, error)
	FindProfileByUserID(userID uint64) (*models.DJProfile, error)
	// CreateAssociation 建立制作人与 DJ 的签约关系
	CreateAssociation(assoc *models.ProducerDJ) error
	// IsAssociated 检查制作人是否与该 DJ 签约
	IsAssociated(producerID, djID uint64) (bool, error)
	FindDJsByProducerID(producerID uint64) ([]models.DJProfile, error)
}

type djRepository struct {
	db *gorm.DB
}

var _ DJRepository = (*djRepository)(nil)

func NewDJRepository(db *gorm.DB) DJRepository {
	return &djRepository{db: db}
}

func (r *djRepository) CreateProfile(profile *models.DJProfile) error {
	return r.db.Create(profile).Error
}

func (r *djRepository) FindProfileByID(djID uint64) (*models.DJProfile, error) {
	var profile models.DJProfile
	err := r.db.Where("id = ?", djID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询 DJ 资料失败: %w", err)
	}
	return &profile, nil
}

func (r *djRepository) FindProfileByUserID(userID uint64) (*models.DJProfile, error) {
	var profile models.DJProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询 DJ 资料失败: %w", err)
	}
	return &profile, nil
}

func (r *djRepository) CreateAssociation(assoc *models.ProducerDJ) error {
	return r.db.Create(assoc).Error
}

func (r *djRepository) IsAssociated(producerID, djID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.ProducerDJ{}).
		Where("producer_id = ? AND dj_id = ?", producerID, djID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询签约关系失败: %w", err)
	}
	return count > 0, nil
}

// 查找制作人签约的所有 DJ
func (r *djRepository) FindDJsByProducerID(producerID uint64) ([]models.DJProfile, error) {
	var profiles []models.DJProfile
	err := r.db.
		Joins("JOIN producer_djs ON producer_djs.dj_id = dj_profiles.id").
		Where("producer_djs.producer_id = ?", producerID).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("查询签约 DJ 列表失败: %w", err)
	}
	return profiles, nil
}

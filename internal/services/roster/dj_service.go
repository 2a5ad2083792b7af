package roster

import (
	"fmt"

	"github.com/portal-unk/portal-api/internal/models"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/portal-unk/portal-api/internal/repositories"
	"go.uber.org/zap"
)

// DJService 管理 DJ 资料与制作人签约关系
type DJService interface {
	// CreateProfile 为 DJ 账号创建演出资料，一个账号只能创建一份
	CreateProfile(userID uint64, stageName, genre, bio string) (*models.DJProfile, error)
	// AssociateDJ 建立制作人与 DJ 的签约关系
	AssociateDJ(producerID, djID uint64) error
	// ListProducerDJs 列出制作人签约的所有 DJ
	ListProducerDJs(producerID uint64) ([]models.DJProfile, error)
	// GetProfileByUserID 根据账号 ID 查找 DJ 资料
	GetProfileByUserID(userID uint64) (*models.DJProfile, error)
}

type djService struct {
	djRepo repositories.DJRepository
}

var _ DJService = (*djService)(nil)

func NewDJService(djRepo repositories.DJRepository) DJService {
	return &djService{djRepo: djRepo}
}

func (s *djService) CreateProfile(userID uint64, stageName, genre, bio string) (*models.DJProfile, error) {
	if stageName == "" {
		return nil, xerr.ErrInvalidParams
	}

	existing, err := s.djRepo.FindProfileByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("查询 DJ 资料失败: %w", err)
	}
	if existing != nil {
		return nil, xerr.ErrDJProfileAlreadyExists
	}

	profile := &models.DJProfile{
		UserID:    userID,
		StageName: stageName,
		Genre:     genre,
		Bio:       bio,
	}
	if err := s.djRepo.CreateProfile(profile); err != nil {
		return nil, fmt.Errorf("创建 DJ 资料失败: %w", err)
	}

	logger.Info("CreateProfile: DJ 资料创建成功",
		zap.Uint64("djID", profile.ID), zap.String("stageName", stageName))
	return profile, nil
}

func (s *djService) AssociateDJ(producerID, djID uint64) error {
	profile, err := s.djRepo.FindProfileByID(djID)
	if err != nil {
		return fmt.Errorf("查询 DJ 资料失败: %w", err)
	}
	if profile == nil {
		return xerr.ErrDJNotFound
	}

	associated, err := s.djRepo.IsAssociated(producerID, djID)
	if err != nil {
		return fmt.Errorf("查询签约关系失败: %w", err)
	}
	if associated {
		return xerr.ErrAssociationAlreadyExists
	}

	assoc := &models.ProducerDJ{
		ProducerID: producerID,
		DJID:       djID,
	}
	if err := s.djRepo.CreateAssociation(assoc); err != nil {
		return fmt.Errorf("创建签约关系失败: %w", err)
	}

	logger.Info("AssociateDJ: 签约关系创建成功",
		zap.Uint64("producerID", producerID), zap.Uint64("djID", djID))
	return nil
}

func (s *djService) GetProfileByUserID(userID uint64) (*models.DJProfile, error) {
	profile, err := s.djRepo.FindProfileByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("查询 DJ 资料失败: %w", err)
	}
	if profile == nil {
		return nil, xerr.ErrDJNotFound
	}
	return profile, nil
}

func (s *djService) ListProducerDJs(producerID uint64) ([]models.DJProfile, error) {
	profiles, err := s.djRepo.FindDJsByProducerID(producerID)
	if err != nil {
		return nil, fmt.Errorf("查询签约 DJ 列表失败: %w", err)
	}
	return profiles, nil
}

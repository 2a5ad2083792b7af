package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/utils"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/portal-unk/portal-api/internal/services/roster"
	"go.uber.org/zap"
)

type DJHandler struct {
	djService roster.DJService
}

func NewDJHandler(djService roster.DJService) *DJHandler {
	return &DJHandler{
		djService: djService,
	}
}

type CreateDJProfileRequest struct {
	StageName string `json:"stage_name" binding:"required,max=64"`
	Genre     string `json:"genre" binding:"max=32"`
	Bio       string `json:"bio" binding:"max=1024"`
}

type AssociateDJRequest struct {
	DJID uint64 `json:"dj_id" binding:"required"`
}

// CreateProfile handles creation of a DJ profile for the authenticated DJ account.
// @Summary 创建 DJ 资料
// @Description 为当前 DJ 账号创建艺人资料，每个账号只能创建一份
// @Tags DJ
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDJProfileRequest true "DJ 资料"
// @Success 200 {object} xerr.Response "DJ 资料创建成功"
// @Failure 400 {object} xerr.Response "请求参数无效"
// @Failure 409 {object} xerr.Response "该账号已创建过 DJ 资料"
// @Router /api/v1/djs/profile [post]
func (h *DJHandler) CreateProfile(c *gin.Context) {
	var req CreateDJProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "请求参数解析失败: "+err.Error())
		return
	}

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	profile, err := h.djService.CreateProfile(userID, req.StageName, req.Genre, req.Bio)
	if err != nil {
		if errors.Is(err, xerr.ErrDJProfileAlreadyExists) {
			xerr.Error(c, http.StatusConflict, xerr.DJProfileAlreadyExistsCode, err.Error())
		} else {
			logger.Error("CreateProfile: 创建 DJ 资料失败", zap.Uint64("userID", userID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "创建 DJ 资料失败")
		}
		return
	}

	xerr.Success(c, http.StatusOK, "DJ 资料创建成功", gin.H{
		"profile": profile,
	})
}

// Associate handles signing a DJ to the authenticated producer's roster.
// @Summary 签约 DJ
// @Description 将指定 DJ 加入当前制作人的艺人名册
// @Tags DJ
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssociateDJRequest true "DJ ID"
// @Success 200 {object} xerr.Response "签约成功"
// @Failure 404 {object} xerr.Response "DJ 不存在"
// @Failure 409 {object} xerr.Response "签约关系已存在"
// @Router /api/v1/djs/associate [post]
func (h *DJHandler) Associate(c *gin.Context) {
	var req AssociateDJRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "请求参数解析失败: "+err.Error())
		return
	}

	producerID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := h.djService.AssociateDJ(producerID, req.DJID)
	if err != nil {
		if errors.Is(err, xerr.ErrDJNotFound) {
			xerr.Error(c, http.StatusNotFound, xerr.DJNotFoundCode, err.Error())
		} else if errors.Is(err, xerr.ErrAssociationAlreadyExists) {
			xerr.Error(c, http.StatusConflict, xerr.AssociationAlreadyExistsCode, err.Error())
		} else {
			logger.Error("Associate: 签约 DJ 失败",
				zap.Uint64("producerID", producerID), zap.Uint64("djID", req.DJID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "签约 DJ 失败")
		}
		return
	}

	xerr.Success(c, http.StatusOK, "签约成功", nil)
}

// ListMyDJs handles listing all DJs signed to the authenticated producer.
// @Summary 列出已签约的 DJ
// @Description 列出当前制作人名册中的全部 DJ
// @Tags DJ
// @Produce json
// @Security BearerAuth
// @Success 200 {object} xerr.Response "DJ 列表"
// @Router /api/v1/djs/my [get]
func (h *DJHandler) ListMyDJs(c *gin.Context) {
	producerID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return
	}

	djs, err := h.djService.ListProducerDJs(producerID)
	if err != nil {
		logger.Error("ListMyDJs: 查询签约 DJ 列表失败", zap.Uint64("producerID", producerID), zap.Error(err))
		xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "查询 DJ 列表失败")
		return
	}

	xerr.Success(c, http.StatusOK, "查询成功", gin.H{
		"djs":   djs,
		"total": len(djs),
	})
}

// parseIDParam 解析路径中的数字 ID 参数
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, name+" 格式无效")
		return 0, false
	}
	return id, true
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portal-unk/portal-api/internal/pkg/logger"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
	"github.com/portal-unk/portal-api/internal/services/media"
	"github.com/portal-unk/portal-api/internal/services/share"
	"go.uber.org/zap"
)

// SharePublicHandler 处理无需登录的分享访问接口
type SharePublicHandler struct {
	shareLinkService share.ShareLinkService
	mediaService     media.MediaService
}

func NewSharePublicHandler(shareLinkService share.ShareLinkService, mediaService media.MediaService) *SharePublicHandler {
	return &SharePublicHandler{
		shareLinkService: shareLinkService,
		mediaService:     mediaService,
	}
}

type ValidateShareRequest struct {
	ShareToken string `json:"share_token" binding:"required"`
	PIN        string `json:"pin" binding:"required"`
}

// Validate handles PIN validation for a share link.
// @Summary 验证分享链接
// @Description 验证分享令牌与 PIN。令牌不存在、已过期、PIN 错误均只返回 valid=false，不区分原因
// @Tags 公开分享
// @Accept json
// @Produce json
// @Param request body ValidateShareRequest true "令牌与 PIN"
// @Success 200 {object} xerr.Response "验证结果"
// @Failure 400 {object} xerr.Response "请求参数无效"
// @Router /api/v1/share/validate [post]
func (h *SharePublicHandler) Validate(c *gin.Context) {
	var req ValidateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "请求参数解析失败: "+err.Error())
		return
	}

	result, err := h.shareLinkService.ValidateAccess(c.Request.Context(), req.ShareToken, req.PIN, c.ClientIP())
	if err != nil {
		logger.Error("Validate: 验证分享链接失败", zap.Error(err))
		xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "验证分享链接失败")
		return
	}

	// 无效情形统一返回 200 + valid=false
	xerr.Success(c, http.StatusOK, "验证完成", result)
}

// DownloadPressKit handles downloading a DJ's media bundle through a share link.
// @Summary 下载分享的媒体打包
// @Description 验证令牌与 PIN 后，将该 DJ 的全部媒体打包为 ZIP 下载
// @Tags 公开分享
// @Produce octet-stream
// @Param share_token path string true "分享令牌"
// @Param pin query string true "PIN 码"
// @Success 200 {file} file "ZIP 打包下载"
// @Failure 403 {object} xerr.Response "令牌或 PIN 无效"
// @Failure 404 {object} xerr.Response "没有可下载的媒体文件"
// @Router /api/v1/share/{share_token}/download [get]
func (h *SharePublicHandler) DownloadPressKit(c *gin.Context) {
	shareToken := c.Param("share_token")
	if shareToken == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.InvalidParamsCode, "分享令牌不能为空")
		return
	}
	pin := c.Query("pin")

	result, err := h.shareLinkService.ValidateAccess(c.Request.Context(), shareToken, pin, c.ClientIP())
	if err != nil {
		logger.Error("DownloadPressKit: 验证分享链接失败", zap.Error(err))
		xerr.Error(c, http.StatusInternalServerError, xerr.InternalServerErrorCode, "验证分享链接失败")
		return
	}
	if !result.Valid {
		// 与验证接口一致，不区分无效原因
		xerr.Error(c, http.StatusForbidden, xerr.ForbiddenCode, "分享令牌或 PIN 无效")
		return
	}

	reader, err := h.mediaService.BundleZip(c.Request.Context(), result.DJ.ID)
	if err != nil {
		if errors.Is(err, xerr.ErrMediaNotFound) {
			xerr.Error(c, http.StatusNotFound, xerr.MediaNotFoundCode, "没有可下载的媒体文件")
		} else {
			logger.Error("DownloadPressKit: 打包媒体文件失败",
				zap.Uint64("djID", result.DJ.ID), zap.Error(err))
			xerr.Error(c, http.StatusInternalServerError, xerr.StorageErrorCode, "打包媒体文件失败")
		}
		return
	}

	streamZip(c, fmt.Sprintf("%s.zip", result.DJ.StageName), reader)
}

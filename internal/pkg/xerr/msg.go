package xerr

import "errors"

var (
	// 通用错误
	ErrInternalServer = errors.New("服务器内部错误")

	// 客户端请求错误
	ErrInvalidParams        = errors.New("无效的请求参数")
	ErrInvalidShareDuration = errors.New("分享有效期必须在1到7天之间")
	ErrInvalidPIN           = errors.New("PIN 码必须为4位数字")
	ErrMediaFileInvalid     = errors.New("媒体文件无效")

	// 认证与授权错误
	ErrUnauthorized       = errors.New("用户未授权")
	ErrTokenInvalid       = errors.New("认证 Token 无效或已过期")
	ErrInvalidCredentials = errors.New("用户名或密码不正确")

	// 权限错误
	ErrForbidden        = errors.New("禁止访问")
	ErrNotProducer      = errors.New("仅制作人可执行此操作")
	ErrDJNotAssociated  = errors.New("该 DJ 未与当前制作人签约")
	ErrPermissionDenied = errors.New("您没有操作此资源的权限")

	// 资源未找到错误
	ErrUserNotFound = errors.New("用户不存在")
	ErrDJNotFound   = errors.New("DJ 不存在")
	// 撤销他人的链接与撤销不存在的链接返回同一个错误，
	// 避免向非所有者确认记录是否存在
	ErrShareLinkNotFound = errors.New("分享链接不存在或无权操作")
	ErrMediaNotFound     = errors.New("媒体文件不存在")

	// 业务逻辑冲突
	ErrUserAlreadyExists        = errors.New("该用户名已被注册")
	ErrEmailAlreadyExists       = errors.New("邮箱已被注册")
	ErrDJProfileAlreadyExists   = errors.New("该账号已创建过 DJ 资料")
	ErrAssociationAlreadyExists = errors.New("签约关系已存在")

	// 数据库与外部服务错误
	ErrDatabaseError = errors.New("数据库操作失败")
	ErrStorageError  = errors.New("存储服务操作失败")
	ErrMQError       = errors.New("消息队列操作失败")
	ErrSearchError   = errors.New("搜索服务操作失败")
)

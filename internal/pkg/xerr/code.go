package xerr

// 定义了统一的业务错误码
const (
	SuccessCode = 20000 // 通用成功码

	// --- 客户端请求错误系列 (400xx) ---
	InvalidParamsCode        = 40000 // 无效的请求参数
	InvalidShareDurationCode = 40001 // 分享有效期不在允许范围内
	InvalidPINCode           = 40002 // PIN 码格式错误(必须为4位数字)
	MediaFileInvalidCode     = 40003 // 媒体文件无效

	// --- 认证与授权错误系列 (401xx) ---
	UnauthorizedCode       = 40100 // 通用未授权
	TokenInvalidCode       = 40101 // Token 无效或过期
	InvalidCredentialsCode = 40102 // 用户名或密码错误

	// --- 权限错误系列 (403xx) ---
	ForbiddenCode        = 40300 // 通用无权限
	NotProducerCode      = 40301 // 仅制作人可执行此操作
	DJNotAssociatedCode  = 40302 // 该 DJ 未与当前制作人签约
	PermissionDeniedCode = 40303 // 权限不足

	// --- 资源未找到错误系列 (404xx) ---
	NotFoundCode          = 40400 // 通用资源未找到
	UserNotFoundCode      = 40401 // 用户不存在
	DJNotFoundCode        = 40402 // DJ 不存在
	ShareLinkNotFoundCode = 40403 // 分享链接不存在或无权操作
	MediaNotFoundCode     = 40404 // 媒体文件不存在

	// --- 业务逻辑冲突系列 (409xx) ---
	UserAlreadyExistsCode        = 40900 // 用户名已存在
	EmailAlreadyExistsCode       = 40901 // 邮箱已存在
	DJProfileAlreadyExistsCode   = 40902 // 该账号已创建过 DJ 资料
	AssociationAlreadyExistsCode = 40903 // 签约关系已存在

	// --- 限流系列 (429xx) ---
	TooManyRequestsCode = 42900 // 请求频率过高

	// --- 服务器内部错误系列 (500xx) ---
	InternalServerErrorCode = 50000 // 服务器内部通用错误
	DatabaseErrorCode       = 50001 // 数据库操作失败
	StorageErrorCode        = 50002 // 存储服务操作失败（如MinIO）
	MQErrorCode             = 50003 // 消息队列操作失败
	SearchErrorCode         = 50004 // 搜索服务操作失败
)

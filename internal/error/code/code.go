package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusServiceUnavailable - 503: 服务不可用.
	StatusServiceUnavailable = 503
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrForbidden - 403: 权限不足.
	ErrForbidden
)

// 管理员相关错误码 (101xxx).
const (
	// ErrAdminNotFound - 404: 管理员不存在.
	ErrAdminNotFound int = iota + 101000
	// ErrAdminPasswordIncorrect - 401: 用户名或密码错误.
	ErrAdminPasswordIncorrect
)

// 设备相关错误码 (102xxx).
const (
	// ErrDeviceNotFound - 404: 设备不存在.
	ErrDeviceNotFound int = iota + 102000
	// ErrDeviceCreateFailed - 500: 设备创建失败.
	ErrDeviceCreateFailed
	// ErrDeviceUpdateFailed - 500: 设备更新失败.
	ErrDeviceUpdateFailed
	// ErrDeviceDeleteFailed - 500: 设备删除失败.
	ErrDeviceDeleteFailed
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 家庭成员相关错误码 (106xxx).
const (
	// ErrFamilyMemberNotFound - 404: 家庭成员不存在.
	ErrFamilyMemberNotFound int = iota + 106000
	// ErrFamilyMemberCreateFailed - 500: 家庭成员创建失败.
	ErrFamilyMemberCreateFailed
	// ErrFamilyMemberUpdateFailed - 500: 家庭成员更新失败.
	ErrFamilyMemberUpdateFailed
	// ErrFamilyMemberDeleteFailed - 500: 家庭成员删除失败.
	ErrFamilyMemberDeleteFailed
)

// 设备分配相关错误码 (107xxx).
const (
	// ErrAssignmentNotFound - 404: 分配记录不存在.
	ErrAssignmentNotFound int = iota + 107000
	// ErrAssignmentCreateFailed - 500: 分配失败.
	ErrAssignmentCreateFailed
	// ErrAssignmentDeleteFailed - 500: 取消分配失败.
	ErrAssignmentDeleteFailed
)

// 咀嚼数据/看板相关错误码 (108xxx).
const (
	// ErrChewingDataQueryFailed - 500: 咀嚼数据查询失败.
	ErrChewingDataQueryFailed int = iota + 108000
	// ErrChewingDataSaveFailed - 500: 咀嚼数据保存失败.
	ErrChewingDataSaveFailed
	// ErrInvalidTimeRange - 400: 时间范围无效.
	ErrInvalidTimeRange
	// ErrInvalidInteractionFilter - 400: 互动成员筛选无效.
	ErrInvalidInteractionFilter
	// ErrExportFailed - 500: 导出失败.
	ErrExportFailed
)

// 演示会话相关错误码 (109xxx).
const (
	// ErrDemoSessionNotFound - 404: 演示会话不存在或已过期.
	ErrDemoSessionNotFound int = iota + 109000
	// ErrDemoSessionCreateFailed - 500: 演示会话创建失败.
	ErrDemoSessionCreateFailed
)

package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "success",
	ErrUnknown:         "unknown error",
	ErrBind:            "invalid request body",
	ErrValidation:      "Please fill in all required fields",
	ErrTokenInvalid:    "invalid or missing token",
	ErrTooManyRequests: "too many requests, please slow down",
	ErrForbidden:       "permission denied",

	// 管理员相关错误码
	ErrAdminNotFound:          "admin not found",
	ErrAdminPasswordIncorrect: "invalid username or password",

	// 设备相关错误码
	ErrDeviceNotFound:     "device not found",
	ErrDeviceCreateFailed: "failed to add device",
	ErrDeviceUpdateFailed: "failed to update device",
	ErrDeviceDeleteFailed: "failed to delete device",

	// 数据库相关错误码
	ErrDatabase:       "database error",
	ErrRecordNotFound: "record not found",

	// 家庭成员相关错误码
	ErrFamilyMemberNotFound:     "family member not found",
	ErrFamilyMemberCreateFailed: "failed to add family member",
	ErrFamilyMemberUpdateFailed: "failed to update family member",
	ErrFamilyMemberDeleteFailed: "failed to delete family member",

	// 设备分配相关错误码
	ErrAssignmentNotFound:     "assignment not found",
	ErrAssignmentCreateFailed: "failed to assign device",
	ErrAssignmentDeleteFailed: "failed to remove assignment",

	// 咀嚼数据/看板相关错误码
	ErrChewingDataQueryFailed:   "failed to load chewing data",
	ErrChewingDataSaveFailed:    "failed to save chewing data",
	ErrInvalidTimeRange:         "range must be one of daily, weekly, monthly",
	ErrInvalidInteractionFilter: "interaction filter must be a non-elder family member",
	ErrExportFailed:             "failed to export chewing data",

	// 演示会话相关错误码
	ErrDemoSessionNotFound:     "demo session not found or expired",
	ErrDemoSessionCreateFailed: "failed to start demo session",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,

	// 管理员相关错误码
	ErrAdminNotFound:          StatusNotFound,
	ErrAdminPasswordIncorrect: StatusUnauthorized,

	// 设备相关错误码
	ErrDeviceNotFound:     StatusNotFound,
	ErrDeviceCreateFailed: StatusInternalServerError,
	ErrDeviceUpdateFailed: StatusInternalServerError,
	ErrDeviceDeleteFailed: StatusInternalServerError,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 家庭成员相关错误码
	ErrFamilyMemberNotFound:     StatusNotFound,
	ErrFamilyMemberCreateFailed: StatusInternalServerError,
	ErrFamilyMemberUpdateFailed: StatusInternalServerError,
	ErrFamilyMemberDeleteFailed: StatusInternalServerError,

	// 设备分配相关错误码
	ErrAssignmentNotFound:     StatusNotFound,
	ErrAssignmentCreateFailed: StatusInternalServerError,
	ErrAssignmentDeleteFailed: StatusInternalServerError,

	// 咀嚼数据/看板相关错误码
	ErrChewingDataQueryFailed:   StatusInternalServerError,
	ErrChewingDataSaveFailed:    StatusInternalServerError,
	ErrInvalidTimeRange:         StatusBadRequest,
	ErrInvalidInteractionFilter: StatusBadRequest,
	ErrExportFailed:             StatusInternalServerError,

	// 演示会话相关错误码
	ErrDemoSessionNotFound:     StatusNotFound,
	ErrDemoSessionCreateFailed: StatusInternalServerError,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}

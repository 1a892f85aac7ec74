package services

import "errors"

// 业务错误，控制器通过 errors.Is 映射为错误码
var (
	// ErrValidation 必填字段缺失，在任何数据库调用之前返回
	ErrValidation = errors.New("Please fill in all required fields")
	// ErrAssignmentValidation 分配时未同时选择设备和成员
	ErrAssignmentValidation = errors.New("Please select both a device and a family member")

	ErrFamilyMemberNotFound = errors.New("family member not found")
	ErrDeviceNotFound       = errors.New("device not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")

	// ErrInvalidTimeRange 时间范围不是 daily/weekly/monthly
	ErrInvalidTimeRange = errors.New("range must be one of daily, weekly, monthly")
	// ErrInvalidInteractionFilter 互动筛选必须是非长辈成员
	ErrInvalidInteractionFilter = errors.New("interaction filter must be a non-elder family member")
	// ErrInvalidDeviceStatus 设备状态只能是 online 或 offline
	ErrInvalidDeviceStatus = errors.New("status must be online or offline")

	ErrInvalidCredentials = errors.New("invalid username or password")
)

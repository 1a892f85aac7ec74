package models

import "time"

// Admin represents an operator allowed to use the admin and dashboard APIs
type Admin struct {
	BaseModel
	Username    string     `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password    string     `gorm:"type:varchar(100);not null" json:"-"` // Password not exposed in JSON
	Role        string     `gorm:"type:varchar(50);default:'admin'" json:"role"`
	Status      string     `gorm:"type:varchar(20);default:'active'" json:"status"` // Status: active, inactive
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AllModels 需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Admin{},
		&FamilyMember{},
		&Device{},
		&DeviceAssignment{},
		&ChewingData{},
	}
}

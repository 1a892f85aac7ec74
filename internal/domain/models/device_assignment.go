package models

import "time"

// DeviceAssignment 设备与家庭成员的绑定关系，一行对应一台设备和一个成员
type DeviceAssignment struct {
	BaseModel
	DeviceID       string    `gorm:"type:char(36);not null;index" json:"device_id"`
	FamilyMemberID string    `gorm:"type:char(36);not null;index" json:"family_member_id"`
	AssignedAt     time.Time `json:"assigned_at"`

	// Relations
	Device       *Device       `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	FamilyMember *FamilyMember `gorm:"foreignKey:FamilyMemberID" json:"family_member,omitempty"`
}

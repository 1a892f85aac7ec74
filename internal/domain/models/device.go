package models

import "time"

// DeviceStatus represents the connection status of a wearable device
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
)

// Toggled 返回切换后的状态：online ⇄ offline
func (s DeviceStatus) Toggled() DeviceStatus {
	if s == DeviceStatusOnline {
		return DeviceStatusOffline
	}
	return DeviceStatusOnline
}

// Valid 是否为已知状态
func (s DeviceStatus) Valid() bool {
	return s == DeviceStatusOnline || s == DeviceStatusOffline
}

// Device represents a wearable chewing sensor
type Device struct {
	BaseModel
	Name        string       `gorm:"type:varchar(100);not null" json:"name"`
	Status      DeviceStatus `gorm:"type:varchar(20);default:'offline'" json:"status"`
	BindingTime time.Time    `json:"binding_time"`

	// Relations - 关联关系
	Assignments []DeviceAssignment `gorm:"foreignKey:DeviceID" json:"assignments,omitempty"`
}

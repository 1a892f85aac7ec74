package models

import "time"

// ChewingData 某个成员某一天的咀嚼次数，每个成员每天一行
type ChewingData struct {
	BaseModel
	FamilyMemberID string    `gorm:"type:char(36);not null;uniqueIndex:idx_chewing_member_date" json:"family_member_id"`
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:idx_chewing_member_date" json:"date"`
	Count          int       `gorm:"not null;default:0" json:"count"`
}

// TableName 表名与原始数据集保持一致
func (ChewingData) TableName() string {
	return "chewing_data"
}

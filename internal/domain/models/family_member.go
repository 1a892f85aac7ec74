package models

import "strings"

// elderRelationships 视为长辈的关系（不区分大小写）
var elderRelationships = map[string]struct{}{
	"elder":       {},
	"elderly":     {},
	"older adult": {},
}

// FamilyMember represents a person wearing a Chewing Love device
type FamilyMember struct {
	BaseModel
	Name         string  `gorm:"type:varchar(100);not null" json:"name"`
	Relationship string  `gorm:"type:varchar(50);not null" json:"relationship"`
	AvatarURL    *string `gorm:"type:varchar(255)" json:"avatar_url"`

	// Relations
	Assignments []DeviceAssignment `gorm:"foreignKey:FamilyMemberID" json:"assignments,omitempty"`
}

// IsElder 关系为 elder / elderly / older adult 时返回 true
func (m FamilyMember) IsElder() bool {
	return IsElderRelationship(m.Relationship)
}

// IsElderRelationship 判断关系字符串是否表示长辈
func IsElderRelationship(relationship string) bool {
	_, ok := elderRelationships[strings.ToLower(strings.TrimSpace(relationship))]
	return ok
}

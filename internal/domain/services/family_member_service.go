package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"chewing-love-service/internal/domain/models"
	"chewing-love-service/internal/infrastructure/config"
	"chewing-love-service/pkg/logger"
)

// FamilyMemberInput 新建成员的字段
type FamilyMemberInput struct {
	Name         string  `json:"name" yaml:"name"`
	Relationship string  `json:"relationship" yaml:"relationship"`
	AvatarURL    *string `json:"avatar_url" yaml:"avatar_url"`
}

// FamilyMemberUpdate 更新成员的字段，nil 表示不修改
type FamilyMemberUpdate struct {
	Name         *string `json:"name"`
	Relationship *string `json:"relationship"`
	AvatarURL    *string `json:"avatar_url"`
}

// InterfaceFamilyMemberService defines the family member service interface
type InterfaceFamilyMemberService interface {
	GetAllFamilyMembers(ctx context.Context) ([]models.FamilyMember, error)
	GetFamilyMemberByID(ctx context.Context, id string) (*models.FamilyMember, error)
	CreateFamilyMember(ctx context.Context, input FamilyMemberInput) (*models.FamilyMember, error)
	UpdateFamilyMember(ctx context.Context, id string, input FamilyMemberUpdate) (*models.FamilyMember, error)
	DeleteFamilyMember(ctx context.Context, id string) error
}

// FamilyMemberService 提供家庭成员相关的服务
type FamilyMemberService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceCacheService
}

// NewFamilyMemberService 创建一个新的家庭成员服务
func NewFamilyMemberService(db *gorm.DB, cfg *config.Config, cache InterfaceCacheService) InterfaceFamilyMemberService {
	return &FamilyMemberService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
	}
}

// 1 GetAllFamilyMembers 获取所有家庭成员，按姓名升序
func (s *FamilyMemberService) GetAllFamilyMembers(ctx context.Context) ([]models.FamilyMember, error) {
	members := []models.FamilyMember{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// 2 GetFamilyMemberByID 根据ID获取家庭成员
func (s *FamilyMemberService) GetFamilyMemberByID(ctx context.Context, id string) (*models.FamilyMember, error) {
	var member models.FamilyMember
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// 3 CreateFamilyMember 创建家庭成员，姓名和关系必填
func (s *FamilyMemberService) CreateFamilyMember(ctx context.Context, input FamilyMemberInput) (*models.FamilyMember, error) {
	name := strings.TrimSpace(input.Name)
	relationship := strings.TrimSpace(input.Relationship)
	if name == "" || relationship == "" {
		return nil, ErrValidation
	}

	member := &models.FamilyMember{
		Name:         name,
		Relationship: relationship,
		AvatarURL:    normalizeOptional(input.AvatarURL),
	}
	if err := s.DB.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return member, nil
}

// 4 UpdateFamilyMember 更新家庭成员
func (s *FamilyMemberService) UpdateFamilyMember(ctx context.Context, id string, input FamilyMemberUpdate) (*models.FamilyMember, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrValidation
		}
		updates["name"] = name
	}
	if input.Relationship != nil {
		relationship := strings.TrimSpace(*input.Relationship)
		if relationship == "" {
			return nil, ErrValidation
		}
		updates["relationship"] = relationship
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = normalizeOptional(input.AvatarURL)
	}

	member, err := s.GetFamilyMemberByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return member, nil
	}

	if err := s.DB.WithContext(ctx).Model(member).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.GetFamilyMemberByID(ctx, id)
}

// 5 DeleteFamilyMember 删除家庭成员，同时删除其设备分配和咀嚼数据
func (s *FamilyMemberService) DeleteFamilyMember(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("family_member_id = ?", id).Delete(&models.DeviceAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("family_member_id = ?", id).Delete(&models.ChewingData{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.FamilyMember{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFamilyMemberNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// invalidate 成员变化会影响成员列表、分配列表中的成员信息和看板
func (s *FamilyMemberService) invalidate(ctx context.Context) {
	invalidateGroups(ctx, s.Cache, CacheGroupFamilyMembers, CacheGroupAssignments, CacheGroupDashboard)
}

// invalidateGroups 清除缓存分组；失败只记录日志，不影响已成功的写操作
func invalidateGroups(ctx context.Context, cache InterfaceCacheService, groups ...string) {
	if cache == nil {
		return
	}
	if _, err := cache.InvalidateGroups(ctx, groups...); err != nil {
		logger.Warning("清除缓存失败 groups=%v: %v", groups, err)
	}
}

// normalizeOptional 空白字符串视为未填写
func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

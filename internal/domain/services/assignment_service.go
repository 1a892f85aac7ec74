package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"chewing-love-service/internal/domain/models"
	"chewing-love-service/internal/infrastructure/config"
	"chewing-love-service/pkg/logger"
)

// AssignmentInput 分配设备的字段
type AssignmentInput struct {
	DeviceID       string     `json:"device_id"`
	FamilyMemberID string     `json:"family_member_id"`
	AssignedAt     *time.Time `json:"assigned_at"`
}

// InterfaceAssignmentService defines the device assignment service interface
type InterfaceAssignmentService interface {
	GetAllAssignments(ctx context.Context) ([]models.DeviceAssignment, error)
	GetAssignmentByID(ctx context.Context, id string) (*models.DeviceAssignment, error)
	CreateAssignment(ctx context.Context, input AssignmentInput) (*models.DeviceAssignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// AssignmentService 提供设备分配相关的服务
type AssignmentService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceCacheService
	Events InterfaceMQTTEventService
	now    func() time.Time
}

// NewAssignmentService 创建一个新的设备分配服务
func NewAssignmentService(db *gorm.DB, cfg *config.Config, cache InterfaceCacheService, events InterfaceMQTTEventService) InterfaceAssignmentService {
	return &AssignmentService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
		Events: events,
		now:    time.Now,
	}
}

// withRelations 只加载列表需要的设备和成员字段
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Device", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "status")
		}).
		Preload("FamilyMember", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "relationship")
		})
}

// 1 GetAllAssignments 获取所有分配记录，按分配时间倒序
func (s *AssignmentService) GetAllAssignments(ctx context.Context) ([]models.DeviceAssignment, error) {
	assignments := []models.DeviceAssignment{}
	if err := withRelations(s.DB.WithContext(ctx)).Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// 2 GetAssignmentByID 根据ID获取分配记录
func (s *AssignmentService) GetAssignmentByID(ctx context.Context, id string) (*models.DeviceAssignment, error) {
	var assignment models.DeviceAssignment
	if err := withRelations(s.DB.WithContext(ctx)).Where("id = ?", id).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// 3 CreateAssignment 把设备分配给成员；同一组合可以重复分配
func (s *AssignmentService) CreateAssignment(ctx context.Context, input AssignmentInput) (*models.DeviceAssignment, error) {
	deviceID := strings.TrimSpace(input.DeviceID)
	memberID := strings.TrimSpace(input.FamilyMemberID)
	if deviceID == "" || memberID == "" {
		return nil, ErrAssignmentValidation
	}

	assignedAt := s.now().UTC()
	if input.AssignedAt != nil {
		assignedAt = input.AssignedAt.UTC()
	}
	assignment := &models.DeviceAssignment{
		DeviceID:       deviceID,
		FamilyMemberID: memberID,
		AssignedAt:     assignedAt,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Device{}).Where("id = ?", deviceID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrDeviceNotFound
		}
		if err := tx.Model(&models.FamilyMember{}).Where("id = ?", memberID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrFamilyMemberNotFound
		}
		return tx.Create(assignment).Error
	})
	if err != nil {
		return nil, err
	}

	invalidateGroups(ctx, s.Cache, CacheGroupAssignments)
	s.publish("assigned", assignment)
	return s.GetAssignmentByID(ctx, assignment.ID)
}

// 4 DeleteAssignment 删除分配记录
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id string) error {
	assignment, err := s.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.DeviceAssignment{}).Error; err != nil {
		return err
	}

	invalidateGroups(ctx, s.Cache, CacheGroupAssignments)
	s.publish("unassigned", assignment)
	return nil
}

func (s *AssignmentService) publish(eventType string, a *models.DeviceAssignment) {
	if s.Events == nil {
		return
	}
	payload := map[string]interface{}{
		"assignment_id":    a.ID,
		"device_id":        a.DeviceID,
		"family_member_id": a.FamilyMemberID,
		"assigned_at":      a.AssignedAt,
	}
	if err := s.Events.Publish(TopicAssignment, eventType, payload); err != nil {
		logger.Debug("分配事件未发布: %v", err)
	}
}

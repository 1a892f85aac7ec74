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

// DeviceInput 新建设备的字段
type DeviceInput struct {
	Name        string              `json:"name"`
	Status      models.DeviceStatus `json:"status"`
	BindingTime *time.Time          `json:"binding_time"`
}

// DeviceUpdate 更新设备的字段，nil 表示不修改
type DeviceUpdate struct {
	Name        *string              `json:"name"`
	Status      *models.DeviceStatus `json:"status"`
	BindingTime *time.Time           `json:"binding_time"`
}

// InterfaceDeviceService defines the device service interface
type InterfaceDeviceService interface {
	GetAllDevices(ctx context.Context) ([]models.Device, error)
	GetDeviceByID(ctx context.Context, id string) (*models.Device, error)
	CreateDevice(ctx context.Context, input DeviceInput) (*models.Device, error)
	UpdateDevice(ctx context.Context, id string, input DeviceUpdate) (*models.Device, error)
	DeleteDevice(ctx context.Context, id string) error
	ToggleDeviceStatus(ctx context.Context, id string) (*models.Device, error)
}

// DeviceService 提供设备相关的服务
type DeviceService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceCacheService
	Events InterfaceMQTTEventService
	now    func() time.Time
}

// NewDeviceService 创建一个新的设备服务
func NewDeviceService(db *gorm.DB, cfg *config.Config, cache InterfaceCacheService, events InterfaceMQTTEventService) InterfaceDeviceService {
	return &DeviceService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
		Events: events,
		now:    time.Now,
	}
}

// 1 GetAllDevices 获取所有设备列表，按名称升序
func (s *DeviceService) GetAllDevices(ctx context.Context) ([]models.Device, error) {
	devices := []models.Device{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// 2 GetDeviceByID 根据ID获取设备
func (s *DeviceService) GetDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	var device models.Device
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

// 3 CreateDevice 创建新设备，状态默认离线，绑定时间默认当前时间
func (s *DeviceService) CreateDevice(ctx context.Context, input DeviceInput) (*models.Device, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrValidation
	}

	status := input.Status
	if status == "" {
		status = models.DeviceStatusOffline
	}
	if !status.Valid() {
		return nil, ErrInvalidDeviceStatus
	}

	bindingTime := s.now().UTC()
	if input.BindingTime != nil {
		bindingTime = input.BindingTime.UTC()
	}

	device := &models.Device{
		Name:        name,
		Status:      status,
		BindingTime: bindingTime,
	}
	if err := s.DB.WithContext(ctx).Create(device).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return device, nil
}

// 4 UpdateDevice 更新设备信息
func (s *DeviceService) UpdateDevice(ctx context.Context, id string, input DeviceUpdate) (*models.Device, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrValidation
		}
		updates["name"] = name
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidDeviceStatus
		}
		updates["status"] = *input.Status
	}
	if input.BindingTime != nil {
		updates["binding_time"] = input.BindingTime.UTC()
	}

	device, err := s.GetDeviceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return device, nil
	}

	if err := s.DB.WithContext(ctx).Model(device).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	updated, err := s.GetDeviceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		s.publishStatus(updated)
	}
	return updated, nil
}

// 5 DeleteDevice 删除设备及其分配记录
func (s *DeviceService) DeleteDevice(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", id).Delete(&models.DeviceAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Device{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDeviceNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// 6 ToggleDeviceStatus 在线/离线状态互相切换
func (s *DeviceService) ToggleDeviceStatus(ctx context.Context, id string) (*models.Device, error) {
	device, err := s.GetDeviceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := device.Status.Toggled()
	if err := s.DB.WithContext(ctx).Model(device).Update("status", next).Error; err != nil {
		return nil, err
	}
	device.Status = next

	s.invalidate(ctx)
	s.publishStatus(device)
	return device, nil
}

// invalidate 设备变化会影响设备列表和分配列表中的设备信息
func (s *DeviceService) invalidate(ctx context.Context) {
	invalidateGroups(ctx, s.Cache, CacheGroupDevices, CacheGroupAssignments)
}

func (s *DeviceService) publishStatus(device *models.Device) {
	if s.Events == nil {
		return
	}
	payload := map[string]interface{}{
		"device_id": device.ID,
		"name":      device.Name,
		"status":    device.Status,
	}
	if err := s.Events.Publish(TopicDeviceStatus, "device_status", payload); err != nil {
		logger.Debug("设备状态事件未发布: %v", err)
	}
}

// Package seed 从 YAML 文件导入演示用的家庭成员、设备、分配和咀嚼数据
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"chewing-love-service/internal/domain/models"
	"chewing-love-service/internal/domain/services"
	"chewing-love-service/pkg/logger"
)

// Fixture 种子文件结构，成员和设备按名称引用
type Fixture struct {
	FamilyMembers []services.FamilyMemberInput `yaml:"family_members"`
	Devices       []FixtureDevice              `yaml:"devices"`
	Assignments   []FixtureAssignment          `yaml:"assignments"`
	ChewingData   []FixtureChewing             `yaml:"chewing_data"`
}

// FixtureDevice 设备条目
type FixtureDevice struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
}

// FixtureAssignment 分配条目
type FixtureAssignment struct {
	Device string `yaml:"device"`
	Member string `yaml:"member"`
}

// FixtureChewing 咀嚼数据条目，date 与 days_ago 二选一
type FixtureChewing struct {
	Member  string `yaml:"member"`
	Date    string `yaml:"date"`
	DaysAgo *int   `yaml:"days_ago"`
	Count   int    `yaml:"count"`
}

// Result 导入数量
type Result struct {
	FamilyMembers int `json:"family_members"`
	Devices       int `json:"devices"`
	Assignments   int `json:"assignments"`
	ChewingData   int `json:"chewing_data"`
}

// Seeder 通过服务层写入数据，校验和缓存失效与 API 一致
type Seeder struct {
	Members     services.InterfaceFamilyMemberService
	Devices     services.InterfaceDeviceService
	Assignments services.InterfaceAssignmentService
	Chewing     services.InterfaceChewingDataService
	Now         func() time.Time
}

// Parse 解析 YAML 种子数据
func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// LoadFile 读取并导入种子文件
func (s *Seeder) LoadFile(ctx context.Context, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fixture, err := Parse(file)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, fixture)
}

// Load 依次导入成员、设备、分配和咀嚼数据
func (s *Seeder) Load(ctx context.Context, f *Fixture) (*Result, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	res := &Result{}
	memberIDs := make(map[string]string, len(f.FamilyMembers))
	deviceIDs := make(map[string]string, len(f.Devices))

	for _, in := range f.FamilyMembers {
		member, err := s.Members.CreateFamilyMember(ctx, in)
		if err != nil {
			return res, fmt.Errorf("family member %q: %w", in.Name, err)
		}
		memberIDs[member.Name] = member.ID
		res.FamilyMembers++
	}

	for _, in := range f.Devices {
		device, err := s.Devices.CreateDevice(ctx, services.DeviceInput{Name: in.Name, Status: models.DeviceStatus(in.Status)})
		if err != nil {
			return res, fmt.Errorf("device %q: %w", in.Name, err)
		}
		deviceIDs[device.Name] = device.ID
		res.Devices++
	}

	for _, in := range f.Assignments {
		deviceID, ok := deviceIDs[in.Device]
		if !ok {
			return res, fmt.Errorf("assignment references unknown device %q", in.Device)
		}
		memberID, ok := memberIDs[in.Member]
		if !ok {
			return res, fmt.Errorf("assignment references unknown member %q", in.Member)
		}
		if _, err := s.Assignments.CreateAssignment(ctx, services.AssignmentInput{DeviceID: deviceID, FamilyMemberID: memberID}); err != nil {
			return res, fmt.Errorf("assignment %s/%s: %w", in.Device, in.Member, err)
		}
		res.Assignments++
	}

	today := now().UTC()
	for _, in := range f.ChewingData {
		memberID, ok := memberIDs[in.Member]
		if !ok {
			return res, fmt.Errorf("chewing data references unknown member %q", in.Member)
		}
		date := in.Date
		if in.DaysAgo != nil {
			date = today.AddDate(0, 0, -*in.DaysAgo).Format("2006-01-02")
		}
		if _, err := s.Chewing.UpsertChewingData(ctx, services.ChewingDataInput{
			FamilyMemberID: memberID,
			Date:           date,
			Count:          in.Count,
		}); err != nil {
			return res, fmt.Errorf("chewing data %s@%s: %w", in.Member, date, err)
		}
		res.ChewingData++
	}

	logger.Info("种子数据导入完成: 成员=%d, 设备=%d, 分配=%d, 咀嚼数据=%d",
		res.FamilyMembers, res.Devices, res.Assignments, res.ChewingData)
	return res, nil
}

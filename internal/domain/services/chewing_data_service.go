package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chewing-love-service/internal/domain/models"
	"chewing-love-service/internal/infrastructure/config"
	"chewing-love-service/pkg/logger"
)

// TimeRange 看板时间范围
type TimeRange string

const (
	RangeDaily   TimeRange = "daily"
	RangeWeekly  TimeRange = "weekly"
	RangeMonthly TimeRange = "monthly"
)

// maxElderCards 看板顶部最多展示的长辈卡片数
const maxElderCards = 2

// EmptyChewingMessage 窗口内没有数据时的提示
const EmptyChewingMessage = "No chewing data available for the selected time range."

// ParseTimeRange 解析时间范围，空字符串默认为 daily
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(strings.ToLower(strings.TrimSpace(s))) {
	case "", RangeDaily:
		return RangeDaily, nil
	case RangeWeekly:
		return RangeWeekly, nil
	case RangeMonthly:
		return RangeMonthly, nil
	default:
		return "", ErrInvalidTimeRange
	}
}

// LookbackDays 回看天数: daily=7, weekly=28, monthly=90
func (r TimeRange) LookbackDays() int {
	switch r {
	case RangeWeekly:
		return 28
	case RangeMonthly:
		return 90
	default:
		return 7
	}
}

// ChewingQuery 看板查询参数
type ChewingQuery struct {
	MemberID string // 为空时使用第一个长辈
	Range    string
	With     string // 互动成员，只校验和回显，不参与过滤
}

// ChewingPoint 图表中的一个点
type ChewingPoint struct {
	Date          string `json:"date"`
	FormattedDate string `json:"formatted_date"`
	Count         int    `json:"count"`
}

// ChewingStats 由数据点计算出的三个统计值
type ChewingStats struct {
	Average int `json:"average"`
	Days    int `json:"days"`
	Max     int `json:"max"`
}

// ChewingResult 看板图表数据
type ChewingResult struct {
	MemberID string         `json:"member_id"`
	Range    TimeRange      `json:"range"`
	With     string         `json:"with,omitempty"`
	Since    string         `json:"since"`
	Points   []ChewingPoint `json:"points"`
	Stats    ChewingStats   `json:"stats"`
	Empty    bool           `json:"empty"`
	Message  string         `json:"message,omitempty"`
}

// ChewingDataInput 写入一天的咀嚼次数
type ChewingDataInput struct {
	FamilyMemberID string `json:"family_member_id" yaml:"family_member_id"`
	Date           string `json:"date" yaml:"date"` // YYYY-MM-DD
	Count          int    `json:"count" yaml:"count"`
}

// InterfaceChewingDataService 看板读取和咀嚼数据写入
type InterfaceChewingDataService interface {
	GetDashboardMembers(ctx context.Context) ([]models.FamilyMember, error)
	GetElders(ctx context.Context) ([]models.FamilyMember, error)
	GetFamilyFilters(ctx context.Context) ([]models.FamilyMember, error)
	GetChewingData(ctx context.Context, query ChewingQuery) (*ChewingResult, error)
	UpsertChewingData(ctx context.Context, input ChewingDataInput) (*models.ChewingData, error)
}

// ChewingDataService 提供看板相关的服务
type ChewingDataService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceCacheService
	Events InterfaceMQTTEventService
	Now    func() time.Time
}

// NewChewingDataService 创建看板服务
func NewChewingDataService(db *gorm.DB, cfg *config.Config, cache InterfaceCacheService, events InterfaceMQTTEventService) InterfaceChewingDataService {
	return &ChewingDataService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
		Events: events,
		Now:    time.Now,
	}
}

// 1 GetDashboardMembers 获取成员列表，按关系倒序、姓名升序
func (s *ChewingDataService) GetDashboardMembers(ctx context.Context) ([]models.FamilyMember, error) {
	members := []models.FamilyMember{}
	if err := s.DB.WithContext(ctx).Order("relationship DESC").Order("name ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// 2 GetElders 获取长辈，最多两位
func (s *ChewingDataService) GetElders(ctx context.Context) ([]models.FamilyMember, error) {
	members, err := s.GetDashboardMembers(ctx)
	if err != nil {
		return nil, err
	}
	elders := []models.FamilyMember{}
	for _, m := range members {
		if m.IsElder() {
			elders = append(elders, m)
			if len(elders) == maxElderCards {
				break
			}
		}
	}
	return elders, nil
}

// 3 GetFamilyFilters 获取可作为互动筛选的非长辈成员
func (s *ChewingDataService) GetFamilyFilters(ctx context.Context) ([]models.FamilyMember, error) {
	members, err := s.GetDashboardMembers(ctx)
	if err != nil {
		return nil, err
	}
	filters := []models.FamilyMember{}
	for _, m := range members {
		if !m.IsElder() {
			filters = append(filters, m)
		}
	}
	return filters, nil
}

// 4 GetChewingData 获取成员在时间窗口内的每日咀嚼次数和统计
func (s *ChewingDataService) GetChewingData(ctx context.Context, query ChewingQuery) (*ChewingResult, error) {
	timeRange, err := ParseTimeRange(query.Range)
	if err != nil {
		return nil, err
	}

	with := strings.TrimSpace(query.With)
	if with != "" {
		if err := s.validateInteractionFilter(ctx, with); err != nil {
			return nil, err
		}
	}

	today := truncateToDay(s.Now())
	since := today.AddDate(0, 0, -timeRange.LookbackDays())
	result := &ChewingResult{
		MemberID: strings.TrimSpace(query.MemberID),
		Range:    timeRange,
		With:     with,
		Since:    since.Format("2006-01-02"),
		Points:   []ChewingPoint{},
	}

	if result.MemberID == "" {
		elders, err := s.GetElders(ctx)
		if err != nil {
			return nil, err
		}
		if len(elders) == 0 {
			result.Empty = true
			result.Message = EmptyChewingMessage
			return result, nil
		}
		result.MemberID = elders[0].ID
	}

	var rows []models.ChewingData
	if err := s.DB.WithContext(ctx).
		Where("family_member_id = ? AND date >= ?", result.MemberID, since).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result.Points = append(result.Points, ChewingPoint{
			Date:          row.Date.UTC().Format("2006-01-02"),
			FormattedDate: row.Date.UTC().Format("Jan 02"),
			Count:         row.Count,
		})
	}
	result.Stats = ComputeStats(result.Points)
	if len(result.Points) == 0 {
		result.Empty = true
		result.Message = EmptyChewingMessage
	}
	return result, nil
}

// 5 UpsertChewingData 写入或覆盖成员某天的咀嚼次数
func (s *ChewingDataService) UpsertChewingData(ctx context.Context, input ChewingDataInput) (*models.ChewingData, error) {
	memberID := strings.TrimSpace(input.FamilyMemberID)
	if memberID == "" || strings.TrimSpace(input.Date) == "" {
		return nil, ErrValidation
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(input.Date), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if input.Count < 0 {
		return nil, fmt.Errorf("%w: count must not be negative", ErrValidation)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.FamilyMember{}).Where("id = ?", memberID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrFamilyMemberNotFound
	}

	row := &models.ChewingData{
		FamilyMemberID: memberID,
		Date:           date,
		Count:          input.Count,
	}
	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "family_member_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "updated_at"}),
	}).Create(row).Error; err != nil {
		return nil, err
	}

	var saved models.ChewingData
	if err := s.DB.WithContext(ctx).
		Where("family_member_id = ? AND date = ?", memberID, date).
		First(&saved).Error; err != nil {
		return nil, err
	}

	invalidateGroups(ctx, s.Cache, CacheGroupDashboard)
	if s.Events != nil {
		payload := map[string]interface{}{
			"family_member_id": memberID,
			"date":             input.Date,
			"count":            saved.Count,
		}
		if err := s.Events.Publish(TopicChewingDataSaved, "chewing_data_saved", payload); err != nil {
			logger.Debug("咀嚼数据事件未发布: %v", err)
		}
	}
	return &saved, nil
}

func (s *ChewingDataService) validateInteractionFilter(ctx context.Context, id string) error {
	var member models.FamilyMember
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidInteractionFilter
		}
		return err
	}
	if member.IsElder() {
		return ErrInvalidInteractionFilter
	}
	return nil
}

// ComputeStats 平均值四舍五入，没有数据时全部为0
func ComputeStats(points []ChewingPoint) ChewingStats {
	if len(points) == 0 {
		return ChewingStats{}
	}
	sum := 0
	max := points[0].Count
	for _, p := range points {
		sum += p.Count
		if p.Count > max {
			max = p.Count
		}
	}
	return ChewingStats{
		Average: int(math.Round(float64(sum) / float64(len(points)))),
		Days:    len(points),
		Max:     max,
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

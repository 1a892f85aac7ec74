package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chewing-love-service/internal/domain/models"
)

var chewingNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type chewingFixture struct {
	chewing *ChewingDataService
	members InterfaceFamilyMemberService
	cache   *MemoryCacheService
	events  *recordingEvents
}

func newChewingFixture(t *testing.T) chewingFixture {
	db := newTestDB(t)
	cache := NewMemoryCacheService()
	events := &recordingEvents{}
	svc := NewChewingDataService(db, testConfig(), cache, events).(*ChewingDataService)
	svc.Now = fixedClock(chewingNow)
	return chewingFixture{
		chewing: svc,
		members: NewFamilyMemberService(db, testConfig(), nil),
		cache:   cache,
		events:  events,
	}
}

func (f chewingFixture) save(t *testing.T, memberID, date string, count int) {
	t.Helper()
	_, err := f.chewing.UpsertChewingData(ctxBg, ChewingDataInput{FamilyMemberID: memberID, Date: date, Count: count})
	require.NoError(t, err)
}

func TestParseTimeRange(t *testing.T) {
	cases := map[string]TimeRange{
		"":         RangeDaily,
		"daily":    RangeDaily,
		" Weekly ": RangeWeekly,
		"MONTHLY":  RangeMonthly,
	}
	for in, want := range cases {
		got, err := ParseTimeRange(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTimeRange("yearly")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	assert.Equal(t, 7, RangeDaily.LookbackDays())
	assert.Equal(t, 28, RangeWeekly.LookbackDays())
	assert.Equal(t, 90, RangeMonthly.LookbackDays())
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, ChewingStats{}, ComputeStats(nil))

	points := []ChewingPoint{{Count: 100}, {Count: 101}}
	assert.Equal(t, ChewingStats{Average: 101, Days: 2, Max: 101}, ComputeStats(points))

	points = []ChewingPoint{{Count: 10}, {Count: 10}, {Count: 11}}
	assert.Equal(t, ChewingStats{Average: 10, Days: 3, Max: 11}, ComputeStats(points))
}

func TestGetChewingDataDailyWindow(t *testing.T) {
	f := newChewingFixture(t)
	rose := mustCreateMember(t, f.members, "Grandma Rose", "Elder")

	f.save(t, rose.ID, "2024-03-02", 999) // 窗口之外
	f.save(t, rose.ID, "2024-03-03", 120)
	f.save(t, rose.ID, "2024-03-09", 135)
	f.save(t, rose.ID, "2024-03-10", 140)

	res, err := f.chewing.GetChewingData(ctxBg, ChewingQuery{MemberID: rose.ID})
	require.NoError(t, err)
	assert.Equal(t, RangeDaily, res.Range)
	assert.Equal(t, "2024-03-03", res.Since)
	assert.False(t, res.Empty)
	require.Len(t, res.Points, 3)
	assert.Equal(t, ChewingPoint{Date: "2024-03-03", FormattedDate: "Mar 03", Count: 120}, res.Points[0])
	assert.Equal(t, "2024-03-10", res.Points[2].Date)
	assert.Equal(t, ChewingStats{Average: 132, Days: 3, Max: 140}, res.Stats)

	weekly, err := f.chewing.GetChewingData(ctxBg, ChewingQuery{MemberID: rose.ID, Range: "weekly"})
	require.NoError(t, err)
	assert.Len(t, weekly.Points, 4)
	assert.Equal(t, 999, weekly.Stats.Max)
}

func TestGetChewingDataDefaultsToFirstElder(t *testing.T) {
	f := newChewingFixture(t)
	liam := mustCreateMember(t, f.members, "Liam", "Son")
	rose := mustCreateMember(t, f.members, "Grandma Rose", "Elder")
	f.save(t, liam.ID, "2024-03-09", 50)
	f.save(t, rose.ID, "2024-03-09", 130)

	res, err := f.chewing.GetChewingData(ctxBg, ChewingQuery{})
	require.NoError(t, err)
	assert.Equal(t, rose.ID, res.MemberID)
	require.Len(t, res.Points, 1)
	assert.Equal(t, 130, res.Points[0].Count)
}

func TestGetChewingDataEmpty(t *testing.T) {
	f := newChewingFixture(t)

	// 没有长辈
	res, err := f.chewing.GetChewingData(ctxBg, ChewingQuery{})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, EmptyChewingMessage, res.Message)
	assert.Empty(t, res.MemberID)
	assert.NotNil(t, res.Points)

	// 未知成员返回空结果而不是错误
	res, err = f.chewing.GetChewingData(ctxBg, ChewingQuery{MemberID: "unknown", Range: "monthly"})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, ChewingStats{}, res.Stats)

	_, err = f.chewing.GetChewingData(ctxBg, ChewingQuery{Range: "hourly"})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestGetChewingDataInteractionFilter(t *testing.T) {
	f := newChewingFixture(t)
	rose := mustCreateMember(t, f.members, "Grandma Rose", "Elder")
	emma := mustCreateMember(t, f.members, "Emma", "Granddaughter")

	res, err := f.chewing.GetChewingData(ctxBg, ChewingQuery{MemberID: rose.ID, With: emma.ID})
	require.NoError(t, err)
	assert.Equal(t, emma.ID, res.With)

	_, err = f.chewing.GetChewingData(ctxBg, ChewingQuery{MemberID: rose.ID, With: rose.ID})
	assert.ErrorIs(t, err, ErrInvalidInteractionFilter)

	_, err = f.chewing.GetChewingData(ctxBg, ChewingQuery{MemberID: rose.ID, With: "nobody"})
	assert.ErrorIs(t, err, ErrInvalidInteractionFilter)
}

func TestEldersAndFilters(t *testing.T) {
	f := newChewingFixture(t)
	mustCreateMember(t, f.members, "Grandpa Joe", "elder")
	mustCreateMember(t, f.members, "Grandma Rose", "elder")
	mustCreateMember(t, f.members, "Great Aunt May", "older adult")
	mustCreateMember(t, f.members, "Liam", "son")
	mustCreateMember(t, f.members, "Emma", "granddaughter")

	elders, err := f.chewing.GetElders(ctxBg)
	require.NoError(t, err)
	require.Len(t, elders, 2)
	for _, e := range elders {
		assert.True(t, e.IsElder())
	}

	filters, err := f.chewing.GetFamilyFilters(ctxBg)
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "Liam", filters[0].Name)
	assert.Equal(t, "Emma", filters[1].Name)

	all, err := f.chewing.GetDashboardMembers(ctxBg)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestUpsertChewingDataOverwrites(t *testing.T) {
	f := newChewingFixture(t)
	rose := mustCreateMember(t, f.members, "Grandma Rose", "Elder")

	key := CacheKey(CacheGroupDashboard, "chart")
	require.NoError(t, f.cache.Set(ctxBg, key, []byte("{}"), time.Minute))

	first, err := f.chewing.UpsertChewingData(ctxBg, ChewingDataInput{FamilyMemberID: rose.ID, Date: "2024-03-09", Count: 100})
	require.NoError(t, err)
	second, err := f.chewing.UpsertChewingData(ctxBg, ChewingDataInput{FamilyMemberID: rose.ID, Date: "2024-03-09", Count: 150})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 150, second.Count)

	var n int64
	require.NoError(t, f.chewing.DB.Model(&models.ChewingData{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, found, _ := f.cache.Get(ctxBg, key)
	assert.False(t, found)

	published := f.events.Events()
	require.Len(t, published, 2)
	assert.Equal(t, TopicChewingDataSaved, published[1].Topic)
	assert.Equal(t, 150, published[1].Payload["count"])
}

func TestUpsertChewingDataValidation(t *testing.T) {
	f := newChewingFixture(t)
	rose := mustCreateMember(t, f.members, "Grandma Rose", "Elder")

	for _, in := range []ChewingDataInput{
		{Date: "2024-03-09", Count: 1},
		{FamilyMemberID: rose.ID, Count: 1},
		{FamilyMemberID: rose.ID, Date: "09/03/2024", Count: 1},
		{FamilyMemberID: rose.ID, Date: "2024-03-09", Count: -1},
	} {
		_, err := f.chewing.UpsertChewingData(ctxBg, in)
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err := f.chewing.UpsertChewingData(ctxBg, ChewingDataInput{FamilyMemberID: "missing", Date: "2024-03-09"})
	assert.ErrorIs(t, err, ErrFamilyMemberNotFound)
	assert.Empty(t, f.events.Events())
}

func TestExportChewingData(t *testing.T) {
	f := newChewingFixture(t)
	rose := mustCreateMember(t, f.members, "Grandma Rose", "Elder")
	f.save(t, rose.ID, "2024-03-08", 110)
	f.save(t, rose.ID, "2024-03-09", 130)

	export := NewExportService(f.chewing)
	content, filename, err := export.ExportChewingData(ctxBg, ChewingQuery{MemberID: rose.ID})
	require.NoError(t, err)
	assert.Equal(t, "chewing_"+rose.ID+"_daily_2024-03-03.xlsx", filename)

	wb, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(chewingSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Count"}, rows[0])
	assert.Equal(t, []string{"2024-03-08", "110"}, rows[1])

	avg, err := wb.GetCellValue(summarySheetName, "B4")
	require.NoError(t, err)
	assert.Equal(t, "120", avg)

	_, _, err = export.ExportChewingData(ctxBg, ChewingQuery{Range: "yearly"})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestExportWithoutEldersUsesPlaceholderName(t *testing.T) {
	f := newChewingFixture(t)
	_, filename, err := NewExportService(f.chewing).ExportChewingData(ctxBg, ChewingQuery{Range: "weekly"})
	require.NoError(t, err)
	assert.Equal(t, "chewing_none_weekly_2024-02-11.xlsx", filename)
}

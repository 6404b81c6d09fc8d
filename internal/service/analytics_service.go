package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dropss/internal/db"
	"gorm.io/gorm"
)

const defaultTrendDays = 7

// AnalyticsService 负责个人主页访问量的记录与统计。
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService 创建 AnalyticsService。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// RecordView 追加一条访问记录，不做去重。
func (s *AnalyticsService) RecordView(profileID string, now time.Time) error {
	if profileID == "" {
		return errors.New("invalid profile id")
	}
	view := db.ProfileView{ProfileID: profileID, CreatedAt: now}
	if err := s.db.Create(&view).Error; err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// CountViews 返回主页的累计访问次数。
func (s *AnalyticsService) CountViews(profileID string) (int64, error) {
	var total int64
	if err := s.db.Model(&db.ProfileView{}).Where("profile_id = ?", profileID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return total, nil
}

// DailyViewPoint 描述某一天的访问量。
type DailyViewPoint struct {
	Day   time.Time
	Views int64
}

// DailyViews 返回截至 now 的最近 days 天访问量，按日期升序，缺失的日期补零。
func (s *AnalyticsService) DailyViews(profileID string, now time.Time, days int) ([]DailyViewPoint, error) {
	if days <= 0 {
		days = defaultTrendDays
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -(days - 1))

	var stamps []time.Time
	if err := s.db.Model(&db.ProfileView{}).
		Where("profile_id = ? AND created_at >= ? AND created_at < ?", profileID, start, today.AddDate(0, 0, 1)).
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, fmt.Errorf("daily views: %w", err)
	}

	// 在 Go 侧按天分桶，避免 sqlite/postgres 日期函数差异
	buckets := make(map[string]int64, days)
	for _, ts := range stamps {
		buckets[ts.In(loc).Format("2006-01-02")]++
	}

	points := make([]DailyViewPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		points = append(points, DailyViewPoint{Day: day, Views: buckets[day.Format("2006-01-02")]})
	}
	return points, nil
}

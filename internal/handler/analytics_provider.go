package handler

import (
	"time"

	"github.com/dropss/internal/service"
)

type analyticsProvider interface {
	RecordView(profileID string, now time.Time) error
	CountViews(profileID string) (int64, error)
	DailyViews(profileID string, now time.Time, days int) ([]service.DailyViewPoint, error)
}

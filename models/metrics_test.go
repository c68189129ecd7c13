package models

import (
	"testing"
	"time"
)

func TestCacheRatio(t *testing.T) {
	tests := []struct {
		cached, total int64
		want          float64
	}{
		{0, 0, 0},
		{100, 0, 0},
		{0, 100, 0},
		{50, 100, 50},
		{847, 1000, 84.70},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{100, 100, 100},
	}

	for _, tt := range tests {
		if got := CacheRatio(tt.cached, tt.total); got != tt.want {
			t.Errorf("CacheRatio(%d, %d) = %.2f; want %.2f", tt.cached, tt.total, got, tt.want)
		}
	}
}

func TestDateKey(t *testing.T) {
	r := &DailyMetricRecord{Date: time.Date(2024, time.March, 7, 15, 30, 0, 0, time.UTC)}
	if got := r.DateKey(); got != "2024-03-07" {
		t.Errorf("DateKey() = %q; want 2024-03-07", got)
	}
}

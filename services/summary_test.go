package services

import (
	"testing"

	"cloudflare-analytics/models"
)

func TestSummaryBuild(t *testing.T) {
	s := NewSummaryService(newTestLogger())

	records := []*models.DailyMetricRecord{
		{
			Date: day("2024-01-02"), UniqueVisitors: 50, TotalRequests: 1000,
			CachedRequests: 900, TotalBytes: 2048, CachedBytes: 1024, ThreatsDetected: 3,
		},
		{
			Date: day("2024-01-01"), UniqueVisitors: 30, TotalRequests: 1000,
			CachedRequests: 600, TotalBytes: 2048, CachedBytes: 2048, ThreatsDetected: 1,
		},
	}

	sum := s.Build(records)

	if sum.Days != 2 {
		t.Errorf("Days = %d; want 2", sum.Days)
	}
	if got := sum.PeriodStart.Format("2006-01-02"); got != "2024-01-01" {
		t.Errorf("PeriodStart = %s; want 2024-01-01", got)
	}
	if got := sum.PeriodEnd.Format("2006-01-02"); got != "2024-01-02" {
		t.Errorf("PeriodEnd = %s; want 2024-01-02", got)
	}
	if sum.TotalVisitors != 80 {
		t.Errorf("TotalVisitors = %d; want 80", sum.TotalVisitors)
	}
	if sum.TotalRequests != 2000 || sum.TotalCached != 1500 {
		t.Errorf("requests = %d/%d; want 2000/1500", sum.TotalRequests, sum.TotalCached)
	}
	if sum.RequestCacheRatio != 75.0 {
		t.Errorf("RequestCacheRatio = %.2f; want 75.00", sum.RequestCacheRatio)
	}
	if sum.TotalBytes != 4096 || sum.TotalCachedBytes != 3072 {
		t.Errorf("bytes = %d/%d; want 4096/3072", sum.TotalBytes, sum.TotalCachedBytes)
	}
	if sum.ByteCacheRatio != 75.0 {
		t.Errorf("ByteCacheRatio = %.2f; want 75.00", sum.ByteCacheRatio)
	}
	if sum.TotalThreats != 4 {
		t.Errorf("TotalThreats = %d; want 4", sum.TotalThreats)
	}
}

func TestSummaryBuildEmpty(t *testing.T) {
	s := NewSummaryService(newTestLogger())
	sum := s.Build(nil)

	if sum.Days != 0 || sum.TotalRequests != 0 || sum.RequestCacheRatio != 0 {
		t.Errorf("empty summary not zero-valued: %+v", sum)
	}
}

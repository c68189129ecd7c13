package services

import (
	"fmt"
	"strings"

	"cloudflare-analytics/models"
	"cloudflare-analytics/utils"
)

// SummaryService aggregates a fetched window into run totals and prints
// them after a successful append.
type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Build computes aggregate totals over the fetched window.
func (s *SummaryService) Build(records []*models.DailyMetricRecord) *models.RunSummary {
	sum := &models.RunSummary{}
	if len(records) == 0 {
		return sum
	}

	sum.Days = len(records)
	sum.PeriodStart = records[0].Date
	sum.PeriodEnd = records[0].Date

	for _, r := range records {
		if r.Date.Before(sum.PeriodStart) {
			sum.PeriodStart = r.Date
		}
		if r.Date.After(sum.PeriodEnd) {
			sum.PeriodEnd = r.Date
		}
		sum.TotalVisitors += r.UniqueVisitors
		sum.TotalRequests += r.TotalRequests
		sum.TotalCached += r.CachedRequests
		sum.TotalBytes += r.TotalBytes
		sum.TotalCachedBytes += r.CachedBytes
		sum.TotalThreats += r.ThreatsDetected
	}

	sum.RequestCacheRatio = models.CacheRatio(sum.TotalCached, sum.TotalRequests)
	sum.ByteCacheRatio = models.CacheRatio(sum.TotalCachedBytes, sum.TotalBytes)
	return sum
}

// Print renders the summary report to stdout.
func (s *SummaryService) Print(r *models.RunSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 CLOUDFLARE ANALYTICS — COLLECTION SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Period\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  %s ~ %s (%d days)\n\n",
		r.PeriodStart.Format("2006-01-02"), r.PeriodEnd.Format("2006-01-02"), r.Days)

	fmt.Printf("\033[1;33m  Traffic\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Unique visitors     : \033[1m%d\033[0m\n", r.TotalVisitors)
	fmt.Printf("  Total requests      : \033[1m%d\033[0m\n", r.TotalRequests)
	fmt.Printf("  Cached requests     : \033[1m%d\033[0m\n", r.TotalCached)
	fmt.Printf("  Request cache ratio : \033[1;32m%.2f%%\033[0m\n\n", r.RequestCacheRatio)

	fmt.Printf("\033[1;33m  Bandwidth\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total data          : \033[1m%s\033[0m\n", utils.FormatBytes(r.TotalBytes))
	fmt.Printf("  Cached data         : \033[1m%s\033[0m\n", utils.FormatBytes(r.TotalCachedBytes))
	fmt.Printf("  Byte cache ratio    : \033[1;32m%.2f%%\033[0m\n\n", r.ByteCacheRatio)

	fmt.Printf("\033[1;33m  Security\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Threats detected    : \033[1;31m%d\033[0m\n", r.TotalThreats)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

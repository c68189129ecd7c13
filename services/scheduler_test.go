package services

import (
	"testing"
	"time"
)

func TestShouldCollectToday(t *testing.T) {
	// Walk an entire month: only the 1st passes the gate.
	for d := 1; d <= 31; d++ {
		now := time.Date(2024, time.January, d, 13, 45, 0, 0, time.UTC)
		want := d == 1
		if got := ShouldCollectToday(now); got != want {
			t.Errorf("ShouldCollectToday(day %d) = %v; want %v", d, got, want)
		}
	}
}

func TestShouldCollectCustomDay(t *testing.T) {
	tests := []struct {
		now  time.Time
		day  int
		want bool
	}{
		{time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), 15, true},
		{time.Date(2024, time.March, 15, 23, 59, 59, 0, time.UTC), 15, true},
		{time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), 15, false},
		{time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), 1, true},
	}

	for _, tt := range tests {
		if got := ShouldCollect(tt.now, tt.day); got != tt.want {
			t.Errorf("ShouldCollect(%s, %d) = %v; want %v",
				tt.now.Format("2006-01-02"), tt.day, got, tt.want)
		}
	}
}

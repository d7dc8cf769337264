package analytics

import (
	"fmt"
	"strings"

	"github.com/hotelsight/backend/internal/models"
)

// GenerateInsights turns an ordered metric series into the narrative shown on
// the analytics screen. It is deterministic so results can be cached and
// compared in tests.
func GenerateInsights(hotelName string, metrics []models.HotelMetric) string {
	if len(metrics) == 0 {
		return fmt.Sprintf("No performance data has been recorded for %s yet. Add monthly metrics to unlock insights.", hotelName)
	}

	sections := []string{
		revenueTrend(hotelName, metrics),
		occupancyInsight(metrics),
		peakMonth(metrics),
		focusAreas(metrics),
	}
	return strings.Join(sections, "\n\n")
}

func revenueTrend(hotelName string, metrics []models.HotelMetric) string {
	first := metrics[0]
	last := metrics[len(metrics)-1]
	if len(metrics) == 1 {
		return fmt.Sprintf("%s recorded revenue of $%.0f in %s.", hotelName, last.Revenue, last.Month.Format("January 2006"))
	}
	change := last.Revenue - first.Revenue
	direction := "grown"
	if change < 0 {
		direction = "declined"
		change = -change
	}
	pct := 0.0
	if first.Revenue > 0 {
		pct = change / first.Revenue * 100
	}
	return fmt.Sprintf("Revenue at %s has %s by $%.0f (%.1f%%) between %s and %s.",
		hotelName, direction, change, pct,
		first.Month.Format("January 2006"), last.Month.Format("January 2006"))
}

func occupancyInsight(metrics []models.HotelMetric) string {
	total := 0.0
	for _, m := range metrics {
		total += m.Occupancy
	}
	avg := total / float64(len(metrics))
	rating := "has room to improve"
	if avg > 75 {
		rating = "is excellent"
	} else if avg > 60 {
		rating = "is good"
	}
	return fmt.Sprintf("Average occupancy over the period is %.1f%%, which %s.", avg, rating)
}

func peakMonth(metrics []models.HotelMetric) string {
	best := metrics[0]
	for _, m := range metrics[1:] {
		if m.Revenue > best.Revenue {
			best = m
		}
	}
	return fmt.Sprintf("The strongest month was %s with $%.0f in revenue and %.1f%% occupancy.",
		best.Month.Format("January 2006"), best.Revenue, best.Occupancy)
}

func focusAreas(metrics []models.HotelMetric) string {
	last := metrics[len(metrics)-1]
	areas := []string{}
	if last.Occupancy < 60 {
		areas = append(areas, "lift occupancy through pricing and channel mix")
	}
	if last.Revenue > 0 && last.Profit/last.Revenue < 0.2 {
		areas = append(areas, "review expenses, margin is under 20%")
	}
	if len(metrics) > 1 && last.Revenue < metrics[len(metrics)-2].Revenue {
		areas = append(areas, "revenue dipped last month, investigate demand drivers")
	}
	if len(areas) == 0 {
		return "Focus areas: keep the current strategy, all headline indicators are healthy."
	}
	return "Focus areas: " + strings.Join(areas, "; ") + "."
}

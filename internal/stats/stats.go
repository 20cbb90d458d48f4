// Package stats computes the aggregate price figures served by the
// trends and price-comparison endpoints.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"propertyregister/server/internal/database"
	"propertyregister/server/internal/models"
)

const comparisonCounty = "Dublin"

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value for an odd count and the average of
// the two middle values for an even count, 0 for an empty slice. The
// input is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Trends summarises the prices of the trailing window.
func Trends(prices []float64, windowDays int) models.PriceTrends {
	return models.PriceTrends{
		AveragePrice: Mean(prices),
		MedianPrice:  Median(prices),
		TotalSales:   len(prices),
		Timeframe:    fmt.Sprintf("Last %d days", windowDays),
	}
}

// MonthlyDublinComparison partitions a year's sales into Dublin versus
// the rest of the country and returns the twelve monthly average prices
// in calendar order. Months without sales report 0. The county match is
// exact and case-sensitive.
func MonthlyDublinComparison(year int, sales []database.SalePrice) []models.MonthlyComparison {
	var dublinSums, otherSums [12]float64
	var dublinCounts, otherCounts [12]int

	for _, sale := range sales {
		if sale.SaleDate.Year() != year {
			continue
		}
		month := int(sale.SaleDate.Month()) - 1
		if sale.County != nil && *sale.County == comparisonCounty {
			dublinSums[month] += sale.Price
			dublinCounts[month]++
		} else {
			otherSums[month] += sale.Price
			otherCounts[month]++
		}
	}

	result := make([]models.MonthlyComparison, 12)
	for i := 0; i < 12; i++ {
		label := time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		result[i] = models.MonthlyComparison{
			Month:  label,
			Dublin: roundedAverage(dublinSums[i], dublinCounts[i]),
			Other:  roundedAverage(otherSums[i], otherCounts[i]),
		}
	}
	return result
}

func roundedAverage(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(sum / float64(count))
}

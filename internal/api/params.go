package api

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"propertyregister/server/internal/database"
	"propertyregister/server/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 100
)

// sortColumns is the allow-list of sortable fields. The mapped value is
// the only identifier ever interpolated into ORDER BY.
var sortColumns = map[string]string{
	"id":       "id",
	"price":    "price",
	"saledate": "sale_date",
	"year":     "year",
}

var sortDirections = map[string]bool{
	"asc":  true,
	"desc": true,
}

// ValidationError is bad client input. It maps to 400, never to a
// server-error status.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Detail
}

// parseQueryParams validates the raw query string into a typed bundle
// plus the filter/sort state echoed back in the response.
func parseQueryParams(c *gin.Context) (database.SearchParams, models.Filters, models.Sorting, error) {
	params := database.SearchParams{
		Page:  parseClampedInt(c.Query("page"), defaultPage, 1, 0),
		Limit: parseClampedInt(c.Query("limit"), defaultLimit, 1, maxLimit),
	}

	// Exact match only: "saleDate" is not a valid sort token, "saledate" is.
	sortBy := c.DefaultQuery("sortBy", "id")
	column, ok := sortColumns[sortBy]
	if !ok {
		return params, models.Filters{}, models.Sorting{}, &ValidationError{
			Detail: fmt.Sprintf("Invalid sort field. Must be one of: %s", strings.Join(sortFieldNames(), ", ")),
		}
	}
	params.SortColumn = column

	direction := c.DefaultQuery("sortDirection", "desc")
	if !sortDirections[direction] {
		return params, models.Filters{}, models.Sorting{}, &ValidationError{
			Detail: "Invalid sort direction. Must be one of: asc, desc",
		}
	}
	params.SortDirection = direction

	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, models.Filters{}, models.Sorting{}, &ValidationError{Detail: "Invalid minPrice"}
		}
		params.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, models.Filters{}, models.Sorting{}, &ValidationError{Detail: "Invalid maxPrice"}
		}
		params.MaxPrice = &v
	}
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, models.Filters{}, models.Sorting{}, &ValidationError{Detail: "Invalid year"}
		}
		params.Year = &v
	}

	// Free-text filters pass through raw; they are escaped downstream via
	// parameter binding.
	params.Search = c.Query("search")
	params.County = c.Query("county")

	filters := models.Filters{
		Search:   optionalString(params.Search),
		County:   optionalString(params.County),
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Year:     params.Year,
	}
	sorting := models.Sorting{Field: sortBy, Direction: direction}

	return params, filters, sorting, nil
}

// parseClampedInt parses raw as an integer, falling back to def on
// absent or non-numeric input, then clamps to [min, max]. A max of 0
// means unbounded.
func parseClampedInt(raw string, def, min, max int) int {
	v, err := strconv.Atoi(raw)
	if raw == "" || err != nil {
		v = def
	}
	if v < min {
		v = min
	}
	if max > 0 && v > max {
		v = max
	}
	return v
}

func sortFieldNames() []string {
	names := make([]string, 0, len(sortColumns))
	for name := range sortColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package database

import "strings"

// SearchParams is the validated parameter bundle for a properties query.
// SortColumn and SortDirection must come from the API layer's allow-list;
// they are interpolated as identifiers, never bound.
type SearchParams struct {
	Page          int
	Limit         int
	Search        string
	County        string
	MinPrice      *float64
	MaxPrice      *float64
	Year          *int
	SortColumn    string
	SortDirection string
}

// filter is one WHERE predicate and its bound values.
type filter struct {
	expr string
	args []interface{}
}

// buildFilters maps the parameter bundle to AND-ed predicates. All user
// values are bound as query parameters. LOWER(...) LIKE keeps the
// case-insensitive substring match identical on Postgres and sqlite.
func buildFilters(params SearchParams) []filter {
	var filters []filter

	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		filters = append(filters, filter{
			expr: "(LOWER(address) LIKE ? OR LOWER(county) LIKE ? OR LOWER(eircode) LIKE ?)",
			args: []interface{}{term, term, term},
		})
	}

	if params.County != "" {
		filters = append(filters, filter{
			expr: "LOWER(county) LIKE ?",
			args: []interface{}{"%" + strings.ToLower(params.County) + "%"},
		})
	}

	if params.MinPrice != nil {
		filters = append(filters, filter{expr: "price >= ?", args: []interface{}{*params.MinPrice}})
	}
	if params.MaxPrice != nil {
		filters = append(filters, filter{expr: "price <= ?", args: []interface{}{*params.MaxPrice}})
	}

	if params.Year != nil {
		filters = append(filters, filter{expr: "year = ?", args: []interface{}{*params.Year}})
	}

	return filters
}

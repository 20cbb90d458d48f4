package importer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"propertyregister/server/internal/models"
)

var (
	errZeroPrice    = errors.New("zero price")
	errInvalidPrice = errors.New("unparseable price")
)

// The register encodes the euro sign inconsistently: as UTF-8 U+20AC or
// as the single legacy Windows-1252 byte 0x80, which a latin-1 read
// leaves as the control character U+0080.
var euroStripper = strings.NewReplacer("€", "", "", "")

// columns maps the register's header names to record indexes.
type columns struct {
	date        int
	address     int
	county      int
	eircode     int
	price       int
	description int
}

// mapColumns locates the known register columns by header name. The
// price header is matched loosely because its euro sign does not survive
// the legacy encoding.
func mapColumns(header []string) (columns, error) {
	cols := columns{date: -1, address: -1, county: -1, eircode: -1, price: -1, description: -1}

	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case strings.Contains(name, "Date of Sale"):
			cols.date = i
		case strings.Contains(name, "Address"):
			cols.address = i
		case strings.Contains(name, "County"):
			cols.county = i
		case strings.Contains(name, "Eircode"):
			cols.eircode = i
		// Prefix match: "Not Full Market Price" must not win this column.
		case strings.HasPrefix(name, "Price"):
			cols.price = i
		// Same again: "Property Size Description" is a different column.
		case strings.HasPrefix(name, "Description"):
			cols.description = i
		}
	}

	if cols.date < 0 || cols.address < 0 || cols.price < 0 {
		return cols, fmt.Errorf("missing required columns in header: %v", header)
	}
	return cols, nil
}

// parsePrice normalizes a currency-formatted price string to a number.
// A value that does not parse, or parses to exactly zero, is invalid
// data, not a free transaction.
func parsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(euroStripper.Replace(raw))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, ".00")

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidPrice, raw)
	}
	if price == 0 {
		return 0, fmt.Errorf("%w: %q", errZeroPrice, raw)
	}
	return price, nil
}

// parseSaleDate parses the register's dd/mm/yyyy date form.
func parseSaleDate(raw string) (time.Time, error) {
	return time.Parse("02/01/2006", strings.TrimSpace(raw))
}

// parseRow turns one CSV record into a PropertySale. The second return
// value distinguishes a skipped row (bad data, reported by reason) from
// a structurally unreadable one.
func parseRow(record []string, cols columns) (*models.PropertySale, error) {
	price, err := parsePrice(field(record, cols.price))
	if err != nil {
		return nil, err
	}

	saleDate, err := parseSaleDate(field(record, cols.date))
	if err != nil {
		return nil, fmt.Errorf("unparseable sale date %q: %w", field(record, cols.date), err)
	}

	address := strings.TrimSpace(field(record, cols.address))
	if address == "" {
		return nil, errors.New("empty address")
	}

	sale := &models.PropertySale{
		SaleDate:    saleDate,
		Address:     address,
		Eircode:     optional(field(record, cols.eircode)),
		Price:       price,
		Year:        saleDate.Year(),
		County:      optional(field(record, cols.county)),
		Description: strings.TrimSpace(field(record, cols.description)),
		FullAddress: address,
	}
	if sale.County != nil {
		sale.FullAddress = address + ", " + *sale.County
	}

	return sale, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// optional trims the value and treats an empty string as absent, never
// conflating it with "".
func optional(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice_UTF8EuroSymbol(t *testing.T) {
	price, err := parsePrice("€350,000.00")
	require.NoError(t, err)
	assert.Equal(t, 350000.0, price)
}

func TestParsePrice_LegacyEuroByte(t *testing.T) {
	// Byte 0x80 decoded as latin-1 becomes U+0080
	price, err := parsePrice("350,000.00")
	require.NoError(t, err)
	assert.Equal(t, 350000.0, price)
}

func TestParsePrice_NoSymbol(t *testing.T) {
	price, err := parsePrice("123456.50")
	require.NoError(t, err)
	assert.Equal(t, 123456.5, price)
}

func TestParsePrice_ZeroIsRejected(t *testing.T) {
	_, err := parsePrice("€0.00")
	assert.True(t, errors.Is(err, errZeroPrice))
}

func TestParsePrice_Unparseable(t *testing.T) {
	_, err := parsePrice("not a price")
	assert.True(t, errors.Is(err, errInvalidPrice))

	_, err = parsePrice("")
	assert.True(t, errors.Is(err, errInvalidPrice))
}

func TestParsePrice_NonFiniteAndNegativeRejected(t *testing.T) {
	// strconv.ParseFloat happily parses these; the register never
	// records them, so they are invalid data.
	for _, raw := range []string{"Inf", "-Inf", "+Inf", "NaN", "-100,000.00", "€-1.00"} {
		_, err := parsePrice(raw)
		assert.True(t, errors.Is(err, errInvalidPrice), raw)
	}
}

func TestParseSaleDate(t *testing.T) {
	date, err := parseSaleDate("15/03/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), date)

	_, err = parseSaleDate("2024-03-15")
	assert.Error(t, err)
}

func TestMapColumns(t *testing.T) {
	header := []string{
		"Date of Sale (dd/mm/yyyy)", "Address", "County", "Eircode",
		"Price ()", "Not Full Market Price", "VAT Exclusive",
		"Description of Property", "Property Size Description",
	}

	cols, err := mapColumns(header)
	require.NoError(t, err)
	assert.Equal(t, 0, cols.date)
	assert.Equal(t, 1, cols.address)
	assert.Equal(t, 2, cols.county)
	assert.Equal(t, 3, cols.eircode)
	assert.Equal(t, 4, cols.price)
	assert.Equal(t, 7, cols.description)
}

func TestMapColumns_MissingRequired(t *testing.T) {
	_, err := mapColumns([]string{"County", "Eircode"})
	assert.Error(t, err)
}

func TestParseRow(t *testing.T) {
	header := []string{"Date of Sale (dd/mm/yyyy)", "Address", "County", "Eircode", "Price ()", "Description of Property"}
	cols, err := mapColumns(header)
	require.NoError(t, err)

	record := []string{"15/03/2024", "  12 Dame Street ", "Dublin", "D02 XY45", "350,000.00", "Second-Hand Dwelling house /Apartment"}
	sale, err := parseRow(record, cols)
	require.NoError(t, err)

	assert.Equal(t, "12 Dame Street", sale.Address)
	assert.Equal(t, 350000.0, sale.Price)
	assert.Equal(t, 2024, sale.Year)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), sale.SaleDate)
	require.NotNil(t, sale.Eircode)
	assert.Equal(t, "D02 XY45", *sale.Eircode)
	require.NotNil(t, sale.County)
	assert.Equal(t, "Dublin", *sale.County)
	assert.Equal(t, "12 Dame Street, Dublin", sale.FullAddress)
}

func TestParseRow_AbsentEircodeIsNil(t *testing.T) {
	header := []string{"Date of Sale (dd/mm/yyyy)", "Address", "County", "Eircode", "Price ()", "Description of Property"}
	cols, err := mapColumns(header)
	require.NoError(t, err)

	record := []string{"15/03/2024", "4 Main Street", "", "", "200,000.00", ""}
	sale, err := parseRow(record, cols)
	require.NoError(t, err)

	assert.Nil(t, sale.Eircode)
	assert.Nil(t, sale.County)
	assert.Equal(t, "4 Main Street", sale.FullAddress)
}

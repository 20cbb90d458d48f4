package models

import (
	"strings"
	"time"
)

// newPropertyVAT is the VAT rate added to new-build prices for display.
// The register stores new builds exclusive of VAT.
const newPropertyVAT = 0.135

// PropertySale is one recorded transaction from the price register.
type PropertySale struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	SaleDate    time.Time `gorm:"column:sale_date;index;index:idx_property_sale_year_date,priority:2" json:"saleDate"`
	Address     string    `gorm:"index" json:"address"`
	Eircode     *string   `gorm:"index" json:"eircode"`
	Price       float64   `gorm:"index" json:"price"`
	Year        int       `gorm:"index;index:idx_property_sale_year_date,priority:1" json:"year"`
	FullAddress string    `gorm:"index;default:''" json:"fullAddress"`
	County      *string   `gorm:"index" json:"county"`
	Description string    `gorm:"index;default:'Second-Hand Dwelling house /Apartment'" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName keeps the table name of the original register schema.
func (PropertySale) TableName() string {
	return "property_sale"
}

// IsNewProperty reports whether the free-text description marks the sale
// as a new build rather than a second-hand dwelling.
func (p PropertySale) IsNewProperty() bool {
	return strings.Contains(strings.ToLower(p.Description), "new")
}

// DisplayPrice returns the price with 13.5% VAT added for new builds.
// The stored price is never adjusted.
func (p PropertySale) DisplayPrice() float64 {
	if p.IsNewProperty() {
		return p.Price * (1 + newPropertyVAT)
	}
	return p.Price
}

// Filters echoes the filter state a properties query was served with.
type Filters struct {
	Search   *string  `json:"search"`
	County   *string  `json:"county"`
	MinPrice *float64 `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
	Year     *int     `json:"year"`
}

// Sorting echoes the sort state a properties query was served with.
type Sorting struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// PropertiesPage is the response body of the properties listing endpoint.
type PropertiesPage struct {
	Properties []PropertySale `json:"properties"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Filters    Filters        `json:"filters"`
	Sorting    Sorting        `json:"sorting"`
}

// PriceTrends summarises sales over the trailing 30-day window.
type PriceTrends struct {
	AveragePrice float64 `json:"averagePrice"`
	MedianPrice  float64 `json:"medianPrice"`
	TotalSales   int     `json:"totalSales"`
	Timeframe    string  `json:"timeframe"`
}

// MonthlyComparison is one month of the Dublin vs rest-of-country series.
type MonthlyComparison struct {
	Month  string  `json:"month"`
	Dublin float64 `json:"dublin"`
	Other  float64 `json:"other"`
}

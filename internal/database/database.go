package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"propertyregister/server/internal/models"
)

// Database wraps the connection pool used by both the query service and
// the import pipeline. It is constructed once at startup and injected;
// there is no lazy global initialization.
type Database struct {
	db *gorm.DB
}

func NewDatabase(dsn string) (*Database, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &Database{db: db}, nil
}

func (d *Database) MigrateSchema() error {
	return d.db.AutoMigrate(&models.PropertySale{})
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SearchProperties runs the filtered count and page queries. The two are
// independent round trips sharing the same bound filter values.
func (d *Database) SearchProperties(ctx context.Context, params SearchParams) ([]models.PropertySale, int64, error) {
	filters := buildFilters(params)

	base := func() *gorm.DB {
		tx := d.db.WithContext(ctx).Model(&models.PropertySale{})
		for _, f := range filters {
			tx = tx.Where(f.expr, f.args...)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	offset := (params.Page - 1) * params.Limit
	sales := []models.PropertySale{}
	err := base().
		Order(params.SortColumn + " " + params.SortDirection).
		Limit(params.Limit).
		Offset(offset).
		Find(&sales).Error
	if err != nil {
		return nil, 0, classify(err)
	}

	return sales, total, nil
}

// RecentPrices returns the prices of all sales on or after the cutoff.
func (d *Database) RecentPrices(ctx context.Context, since time.Time) ([]float64, error) {
	var prices []float64
	err := d.db.WithContext(ctx).
		Model(&models.PropertySale{}).
		Where("sale_date >= ?", since).
		Pluck("price", &prices).Error
	if err != nil {
		return nil, classify(err)
	}
	return prices, nil
}

// SalePrice is the projection used by the monthly comparison aggregate.
type SalePrice struct {
	ID       int64
	Price    float64
	SaleDate time.Time
	County   *string
}

// SalesForYear fetches every sale of a calendar year in fixed-size
// batches so aggregates always see the full row set.
func (d *Database) SalesForYear(ctx context.Context, year, batchSize int) ([]SalePrice, error) {
	var out []SalePrice
	var batch []models.PropertySale
	err := d.db.WithContext(ctx).
		Select("id", "price", "sale_date", "county").
		Where("year = ?", year).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			for _, sale := range batch {
				out = append(out, SalePrice{
					ID:       sale.ID,
					Price:    sale.Price,
					SaleDate: sale.SaleDate,
					County:   sale.County,
				})
			}
			return nil
		}).Error
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// FindByDedupKey looks up a sale by (address, sale date, eircode). A nil
// eircode matches only rows where eircode is NULL. Returns nil when no
// row matches.
func (d *Database) FindByDedupKey(ctx context.Context, address string, saleDate time.Time, eircode *string) (*models.PropertySale, error) {
	tx := d.db.WithContext(ctx).Where("address = ? AND sale_date = ?", address, saleDate)
	if eircode == nil {
		tx = tx.Where("eircode IS NULL")
	} else {
		tx = tx.Where("eircode = ?", *eircode)
	}

	var sale models.PropertySale
	err := tx.First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &sale, nil
}

// SaveSale inserts the sale, or updates it in place when it already has
// an ID from a dedup lookup.
func (d *Database) SaveSale(ctx context.Context, sale *models.PropertySale) error {
	return classify(d.db.WithContext(ctx).Save(sale).Error)
}

// CountSales returns the total number of stored sales.
func (d *Database) CountSales(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.PropertySale{}).Count(&count).Error
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

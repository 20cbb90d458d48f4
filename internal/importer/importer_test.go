package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyregister/server/config"
	"propertyregister/server/internal/database"
)

// csvFixture is a register export as it arrives on disk: latin-1 encoded
// with the euro sign as the single byte 0x80.
var csvFixture = []byte("Date of Sale (dd/mm/yyyy),Address,County,Eircode,Price (\x80),Description of Property\r\n" +
	"15/03/2024,12 Dame Street,Dublin,D02 XY45,\"\x80350,000.00\",Second-Hand Dwelling house /Apartment\r\n" +
	"20/03/2024,4 Main Street,Cork,,\"\x80200,000.00\",New Dwelling house /Apartment\r\n" +
	"25/03/2024,9 Free House,Galway,,\"\x800.00\",Second-Hand Dwelling house /Apartment\r\n")

func testConfig(dataDir string) *config.Config {
	cfg := &config.Config{}
	cfg.Import.DataDir = dataDir
	cfg.Import.MaxRetries = 1
	cfg.Import.RetryDelay = 0
	return cfg
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func setupImporter(t *testing.T, dataDir string) (*Importer, *database.Database) {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, db.MigrateSchema())
	return New(db, testConfig(dataDir), testLogger()), db
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "PPR-2024.csv", csvFixture)
	im, db := setupImporter(t, dir)

	summary, err := im.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.Skipped) // the zero-price row
	assert.Equal(t, 0, summary.Errored)

	count, err := db.CountSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	sale, err := db.FindByDedupKey(context.Background(), "12 Dame Street",
		mustParseSaleDate(t, "15/03/2024"), strPtr("D02 XY45"))
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, 350000.0, sale.Price)
	assert.Equal(t, 2024, sale.Year)
	assert.Equal(t, "12 Dame Street, Dublin", sale.FullAddress)
}

func TestProcessFile_ReimportUpdatesNotDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "PPR-2024.csv", csvFixture)
	im, db := setupImporter(t, dir)

	_, err := im.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	summary, err := im.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 2, summary.Updated)

	count, err := db.CountSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestProcessFile_MalformedRowsAreIsolated(t *testing.T) {
	fixture := []byte("Date of Sale (dd/mm/yyyy),Address,County,Eircode,Price (\x80),Description of Property\r\n" +
		"not a date,1 Broken Row,Dublin,,\"\x80100,000.00\",Second-Hand Dwelling house /Apartment\r\n" +
		"15/03/2024,2 Good Row,Dublin,,\"\x80100,000.00\",Second-Hand Dwelling house /Apartment\r\n")

	dir := t.TempDir()
	path := writeFixture(t, dir, "PPR-2024.csv", fixture)
	im, db := setupImporter(t, dir)

	summary, err := im.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)

	count, err := db.CountSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRun_ProcessesAllFilesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "PPR-2024.csv", csvFixture)
	writeFixture(t, dir, "PPR-2023.csv", []byte("Date of Sale (dd/mm/yyyy),Address,County,Eircode,Price (\x80),Description of Property\r\n"+
		"10/01/2023,8 Quay Lane,Limerick,,\"\x80120,000.00\",Second-Hand Dwelling house /Apartment\r\n"))
	writeFixture(t, dir, "notes.txt", []byte("not a csv"))
	im, db := setupImporter(t, dir)

	run, err := im.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, run.Files)
	assert.Equal(t, 0, run.FailedFiles)
	assert.Equal(t, 3, run.Processed)
	assert.Equal(t, 1, run.Errors)

	count, err := db.CountSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRun_FileFailureDoesNotStopSiblings(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "PPR-2022.csv", []byte("wrong,header,entirely\r\nfoo,bar,baz\r\n"))
	writeFixture(t, dir, "PPR-2024.csv", csvFixture)
	im, db := setupImporter(t, dir)

	run, err := im.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, run.Files)
	assert.Equal(t, 1, run.FailedFiles)
	assert.Equal(t, 2, run.Processed)

	count, err := db.CountSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRun_UnreadableDirectoryFails(t *testing.T) {
	im, _ := setupImporter(t, "/nonexistent/salesdata")

	_, err := im.Run(context.Background())
	assert.Error(t, err)
}

func mustParseSaleDate(t *testing.T, raw string) time.Time {
	d, err := parseSaleDate(raw)
	require.NoError(t, err)
	return d
}

func strPtr(s string) *string { return &s }

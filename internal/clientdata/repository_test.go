package clientdata

import (
	"database/sql"
	"testing"
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema mirrors internal/database/schemas/cache_schema.sql
const testSchema = `
CREATE TABLE price_history (code TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE fundamentals (code TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// one connection so every query sees the same in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func testPrices() []market.PricePoint {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return []market.PricePoint{
		{Date: day, Open: 78200, High: 79800, Low: 78200, Close: 79600, Volume: 17142847},
		{Date: day.AddDate(0, 0, 1), Open: 78500, High: 78800, Low: 77000, Close: 77000, Volume: 21753644},
	}
}

func testSnapshot() market.FundamentalSnapshot {
	return market.FundamentalSnapshot{
		Code:         "005930",
		Name:         "Samsung Electronics",
		Market:       "KOSPI",
		CurrentPrice: 72000,
		PrevClose:    71000,
		PER:          14.5,
		PBR:          1.31,
		ROE:          4.15,
		MarketCap:    479.4573e12,
		ForeignRatio: 55.12,
		Volume:       12345678,
	}
}

func TestStoreAndGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TablePriceHistory, "005930", testPrices(), time.Hour))
	require.NoError(t, repo.Store(TableFundamentals, "005930", testSnapshot(), time.Hour))

	var prices []market.PricePoint
	found, err := repo.GetIfFresh(TablePriceHistory, "005930", &prices)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, prices, 2)
	assert.True(t, prices[0].Date.Equal(testPrices()[0].Date))
	assert.Equal(t, 77000.0, prices[1].Close)
	assert.Equal(t, int64(21753644), prices[1].Volume)

	var snapshot market.FundamentalSnapshot
	found, err = repo.GetIfFresh(TableFundamentals, "005930", &snapshot)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, testSnapshot(), snapshot)
}

func TestStore_Upserts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	first := testSnapshot()
	second := testSnapshot()
	second.CurrentPrice = 73000

	require.NoError(t, repo.Store(TableFundamentals, "005930", first, time.Hour))
	require.NoError(t, repo.Store(TableFundamentals, "005930", second, time.Hour))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM fundamentals").Scan(&count))
	assert.Equal(t, 1, count)

	var got market.FundamentalSnapshot
	_, err := repo.Get(TableFundamentals, "005930", &got)
	require.NoError(t, err)
	assert.Equal(t, 73000.0, got.CurrentPrice)
}

func TestGetIfFresh_ExpiredAndMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableFundamentals, "005930", testSnapshot(), -time.Minute))

	var snapshot market.FundamentalSnapshot
	found, err := repo.GetIfFresh(TableFundamentals, "005930", &snapshot)
	require.NoError(t, err)
	assert.False(t, found, "expired entry")

	found, err = repo.Get(TableFundamentals, "005930", &snapshot)
	require.NoError(t, err)
	assert.True(t, found, "stale entry still readable")
	assert.Equal(t, "Samsung Electronics", snapshot.Name)

	found, err = repo.Get(TableFundamentals, "000000", &snapshot)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGet_CorruptEntry(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	_, err := db.Exec("INSERT INTO fundamentals (code, data, expires_at) VALUES (?, ?, ?)",
		"005930", []byte{0xc1}, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	var snapshot market.FundamentalSnapshot
	found, err := repo.GetIfFresh(TableFundamentals, "005930", &snapshot)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	var dest interface{}
	assert.Error(t, repo.Store("users; DROP TABLE fundamentals", "x", 1, time.Hour))
	_, err := repo.Get("users", "x", &dest)
	assert.Error(t, err)
	_, err = repo.GetIfFresh("users", "x", &dest)
	assert.Error(t, err)
	assert.Error(t, repo.Delete("users", "x"))
	_, err = repo.DeleteExpired("users")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TablePriceHistory, "005930", testPrices(), time.Hour))
	require.NoError(t, repo.Delete(TablePriceHistory, "005930"))

	var prices []market.PricePoint
	found, err := repo.Get(TablePriceHistory, "005930", &prices)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TablePriceHistory, "005930", testPrices(), -time.Minute))
	require.NoError(t, repo.Store(TablePriceHistory, "000660", testPrices(), time.Hour))
	require.NoError(t, repo.Store(TableFundamentals, "005930", testSnapshot(), -time.Minute))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{TablePriceHistory: 1, TableFundamentals: 1}, results)

	var prices []market.PricePoint
	found, err := repo.Get(TablePriceHistory, "000660", &prices)
	require.NoError(t, err)
	assert.True(t, found)
}

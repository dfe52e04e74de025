package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sentinel errors for outcomes the handlers must tell apart.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Auto migrate tables
	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %v", err)
	}

	database := &Database{db: db}

	// Create additional indexes that are not covered by GORM tags
	if err := database.createAdditionalIndexes(); err != nil {
		return nil, fmt.Errorf("failed to create additional indexes: %v", err)
	}

	return database, nil
}

// createAdditionalIndexes creates indexes that are not easily covered by GORM tags
func (d *Database) createAdditionalIndexes() error {
	// Composite unique index enforcing at-most-one entry per (user, symbol)
	if err := d.db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_user_symbol_unique ON watchlist_entries(user_id, symbol)").Error; err != nil {
		return fmt.Errorf("failed to create unique watchlist index: %v", err)
	}

	// Composite unique index for (symbol, date) in daily_quote_snapshots
	if err := d.db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshot_symbol_date_unique ON daily_quote_snapshots(symbol, date)").Error; err != nil {
		return fmt.Errorf("failed to create unique snapshot index: %v", err)
	}

	return nil
}

// isDuplicateErr reports whether err is a uniqueness-constraint violation.
// TranslateError covers the common case; the string check keeps older
// driver versions honest.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// User operations

func (d *Database) CreateUser(email, hashedPassword string) (*User, error) {
	user := User{
		Email:    email,
		Password: hashedPassword,
	}

	if err := d.db.Create(&user).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	return &user, nil
}

func (d *Database) GetUserByEmail(email string) (*User, error) {
	var user User
	result := d.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %v", result.Error)
	}
	return &user, nil
}

// ResolveUserID maps an email address to the internal user ID. Empty input
// and every lookup failure resolve to 0; this never raises to its caller.
// Zero is never a valid ID.
func (d *Database) ResolveUserID(email string) uint {
	if email == "" {
		return 0
	}

	var user User
	result := d.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Printf("Warning: failed to resolve user for %s: %v", email, result.Error)
		}
		return 0
	}

	return user.ID
}

// Watchlist operations

// ListWatchlist returns a user's entries, most recently added first.
// Read failures are logged and reported as an empty list so the view
// stays renderable.
func (d *Database) ListWatchlist(userID uint) []WatchlistEntry {
	if userID == 0 {
		return []WatchlistEntry{}
	}

	var entries []WatchlistEntry
	result := d.db.Where("user_id = ?", userID).
		Order("added_at DESC, id DESC").
		Find(&entries)
	if result.Error != nil {
		log.Printf("Warning: failed to query watchlist for user %d: %v", userID, result.Error)
		return []WatchlistEntry{}
	}

	return entries
}

func (d *Database) AddWatchlistEntry(userID uint, symbol, company string) error {
	if userID == 0 || symbol == "" || company == "" {
		return fmt.Errorf("user, symbol and company are required")
	}

	entry := WatchlistEntry{
		UserID:  userID,
		Symbol:  strings.ToUpper(symbol),
		Company: company,
	}

	if err := d.db.Create(&entry).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to add watchlist entry: %v", err)
	}

	return nil
}

func (d *Database) RemoveWatchlistEntry(userID uint, symbol string) error {
	result := d.db.Where("user_id = ? AND symbol = ?", userID, strings.ToUpper(symbol)).
		Delete(&WatchlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove watchlist entry: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWatchedSymbols returns every distinct symbol present on any watchlist.
func (d *Database) GetWatchedSymbols() ([]string, error) {
	var symbols []string
	result := d.db.Model(&WatchlistEntry{}).
		Distinct("symbol").
		Order("symbol ASC").
		Pluck("symbol", &symbols)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query watched symbols: %v", result.Error)
	}
	return symbols, nil
}

// Daily snapshot operations

func (d *Database) UpsertDailySnapshot(symbol string, date time.Time, price, changePercent float64) error {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	snapshot := DailyQuoteSnapshot{
		Symbol:        symbol,
		Date:          day,
		Price:         price,
		ChangePercent: changePercent,
	}

	err := d.db.Create(&snapshot).Error
	if err == nil {
		return nil
	}
	if !isDuplicateErr(err) {
		return fmt.Errorf("failed to insert snapshot for %s: %v", symbol, err)
	}

	// Snapshot for this day already exists, refresh it with the latest quote
	update := d.db.Model(&DailyQuoteSnapshot{}).
		Where("symbol = ? AND date = ?", symbol, day).
		Updates(map[string]interface{}{
			"price":          price,
			"change_percent": changePercent,
		})
	if update.Error != nil {
		return fmt.Errorf("failed to update snapshot for %s: %v", symbol, update.Error)
	}
	return nil
}

func (d *Database) GetDailySnapshots(symbol string, days int) ([]DailyQuoteSnapshot, error) {
	var snapshots []DailyQuoteSnapshot
	threshold := time.Now().UTC().AddDate(0, 0, -days)
	result := d.db.Where("symbol = ? AND date >= ?", strings.ToUpper(symbol), threshold).
		Order("date DESC").
		Find(&snapshots)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query snapshots: %v", result.Error)
	}
	return snapshots, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %v", err)
	}
	return sqlDB.Close()
}

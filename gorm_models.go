package main

import (
	"time"
)

// GORM models for the database

// User represents a registered account. Passwords are stored as bcrypt hashes.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// WatchlistEntry represents one (user, symbol) pairing on a watchlist.
// Entries are created and deleted, never updated in place.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_watchlist_user;not null" json:"userId"`
	Symbol    string    `gorm:"index:idx_watchlist_symbol;not null" json:"symbol"`
	Company   string    `gorm:"not null" json:"company"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"addedAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for WatchlistEntry
func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// DailyQuoteSnapshot represents one end-of-day quote per watched symbol,
// recorded by the scheduler.
type DailyQuoteSnapshot struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Symbol        string    `gorm:"index:idx_snapshot_symbol;not null" json:"symbol"`
	Date          time.Time `gorm:"not null" json:"date"`
	Price         float64   `gorm:"not null" json:"price"`
	ChangePercent float64   `gorm:"not null" json:"changePercent"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for DailyQuoteSnapshot
func (DailyQuoteSnapshot) TableName() string {
	return "daily_quote_snapshots"
}

// Get all model types for auto migration
var allModels = []interface{}{
	&User{},
	&WatchlistEntry{},
	&DailyQuoteSnapshot{},
}

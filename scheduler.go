package main

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler records one end-of-day quote snapshot per watched symbol.
type Scheduler struct {
	database *Database
	finnhub  *FinnhubClient
	cron     *cron.Cron
}

// NewScheduler creates a scheduler pinned to the US market timezone.
func NewScheduler(database *Database, finnhub *FinnhubClient) (*Scheduler, error) {
	// US Eastern so the snapshot lands after the closing bell
	easternTZ, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, err
	}

	c := cron.New(cron.WithLocation(easternTZ))

	return &Scheduler{
		database: database,
		finnhub:  finnhub,
		cron:     c,
	}, nil
}

// Start schedules the snapshot job at 16:10 ET on weekdays.
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("10 16 * * 1-5", func() {
		log.Println("[Scheduler] Recording daily quote snapshots...")
		s.snapshotWatchedSymbols()
	})

	if err != nil {
		log.Printf("[Scheduler] Failed to schedule task: %v", err)
		return
	}

	s.cron.Start()
	log.Println("[Scheduler] Scheduler started - daily snapshots at 16:10 ET on weekdays")
}

// snapshotWatchedSymbols fetches the current quote for every distinct
// watched symbol and upserts today's snapshot. Per-symbol failures are
// logged and skipped.
func (s *Scheduler) snapshotWatchedSymbols() {
	if !s.finnhub.HasCredential() {
		log.Println("[Scheduler] No API key configured, skipping snapshots")
		return
	}

	symbols, err := s.database.GetWatchedSymbols()
	if err != nil {
		log.Printf("[Scheduler] Error getting watched symbols: %v", err)
		return
	}

	if len(symbols) == 0 {
		log.Println("[Scheduler] No watched symbols to snapshot")
		return
	}

	log.Printf("[Scheduler] Snapshotting %d symbols...", len(symbols))

	successCount := 0
	failCount := 0

	for _, symbol := range symbols {
		quote, err := s.finnhub.GetQuote(symbol)
		if err != nil {
			log.Printf("[Scheduler] Failed to fetch quote for %s: %v", symbol, err)
			failCount++
			continue
		}

		if err := s.database.UpsertDailySnapshot(symbol, time.Now(), quote.Current, quote.ChangePercent); err != nil {
			log.Printf("[Scheduler] Failed to record snapshot for %s: %v", symbol, err)
			failCount++
			continue
		}

		successCount++

		// Small delay between requests to avoid rate limiting
		time.Sleep(200 * time.Millisecond)
	}

	log.Printf("[Scheduler] Snapshot run completed: %d succeeded, %d failed", successCount, failCount)
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	log.Println("[Scheduler] Stopping scheduler...")
	s.cron.Stop()
	log.Println("[Scheduler] Scheduler stopped")
}

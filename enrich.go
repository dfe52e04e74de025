package main

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// EnrichedQuote is a watchlist entry augmented with transient market data.
// It is rebuilt on every list view and never persisted. Every numeric field
// is optional because each is sourced independently.
type EnrichedQuote struct {
	Symbol             string    `json:"symbol"`
	Company            string    `json:"company"`
	AddedAt            time.Time `json:"addedAt"`
	CurrentPrice       *float64  `json:"currentPrice,omitempty"`
	ChangePercent      *float64  `json:"changePercent,omitempty"`
	FormattedPrice     string    `json:"formattedPrice,omitempty"`
	FormattedChange    string    `json:"formattedChange,omitempty"`
	FormattedMarketCap string    `json:"formattedMarketCap,omitempty"`
	FormattedPeRatio   string    `json:"formattedPeRatio,omitempty"`
}

type Enricher struct {
	finnhub *FinnhubClient
}

func NewEnricher(finnhub *FinnhubClient) *Enricher {
	return &Enricher{finnhub: finnhub}
}

// Enrich fans out to the market-data API for every entry and merges the
// results. All symbols are fetched concurrently and, per symbol, the three
// endpoint calls run concurrently as well. A failure for one symbol degrades
// that row to its bare stored fields and leaves the rest of the batch
// untouched; the batch always waits for every symbol to settle. Output
// ordering matches input ordering.
func (e *Enricher) Enrich(entries []WatchlistEntry) []EnrichedQuote {
	quotes := make([]EnrichedQuote, len(entries))
	for i, entry := range entries {
		quotes[i] = EnrichedQuote{
			Symbol:  entry.Symbol,
			Company: entry.Company,
			AddedAt: entry.AddedAt,
		}
	}

	// Without a credential there is nothing to fetch; the bare rows are the
	// defined degraded mode, not an error.
	if !e.finnhub.HasCredential() {
		return quotes
	}

	var g errgroup.Group
	for i := range entries {
		i := i
		g.Go(func() error {
			if err := e.enrichOne(&quotes[i]); err != nil {
				log.Printf("Warning: failed to enrich %s: %v", quotes[i].Symbol, err)
			}
			return nil
		})
	}
	g.Wait()

	return quotes
}

// enrichOne issues the three per-symbol requests concurrently and merges
// them into q. If any call fails, q is left with its bare fields only.
func (e *Enricher) enrichOne(q *EnrichedQuote) error {
	var (
		quote   *Quote
		profile *CompanyProfile
		metrics *FinancialMetrics
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		quote, err = e.finnhub.GetQuote(q.Symbol)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = e.finnhub.GetCompanyProfile(q.Symbol)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = e.finnhub.GetFinancialMetrics(q.Symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	price := quote.Current
	changePercent := quote.ChangePercent
	q.CurrentPrice = &price
	q.ChangePercent = &changePercent
	q.FormattedPrice = formatPrice(price)
	q.FormattedChange = formatChangePercent(changePercent)
	q.FormattedMarketCap = formatMarketCap(profile.MarketCapitalization)

	if pe := preferredPeRatio(metrics); pe != nil {
		q.FormattedPeRatio = fmt.Sprintf("%.2f", *pe)
	}

	return nil
}

// preferredPeRatio picks the trailing-twelve-month P/E excluding
// extraordinary items, falling back to the normalized annual figure.
func preferredPeRatio(metrics *FinancialMetrics) *float64 {
	if metrics.Metric.PeExclExtraTTM != nil {
		return metrics.Metric.PeExclExtraTTM
	}
	return metrics.Metric.PeNormalizedAnnual
}

func formatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

// formatChangePercent adds an explicit "+" for positive values only.
// Exactly-zero change renders as "0.00%" without a sign.
// TODO: decide whether zero should render as "+0.00%" instead.
func formatChangePercent(change float64) string {
	if change > 0 {
		return fmt.Sprintf("+%.2f%%", change)
	}
	return fmt.Sprintf("%.2f%%", change)
}

// formatMarketCap rescales a market capitalization given in billions and
// suffixes it by magnitude: trillions at >=1000, billions at >=1, otherwise
// millions.
func formatMarketCap(capBillions float64) string {
	switch {
	case capBillions >= 1000:
		return fmt.Sprintf("$%.2fT", capBillions/1000)
	case capBillions >= 1:
		return fmt.Sprintf("$%.2fB", capBillions)
	default:
		return fmt.Sprintf("$%.2fM", capBillions*1000)
	}
}

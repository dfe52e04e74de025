package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Quote is the current price snapshot for a symbol.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
}

// CompanyProfile carries company metadata. MarketCapitalization is
// denominated in billions of dollars.
type CompanyProfile struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
}

// FinancialMetrics holds the subset of the /stock/metric response we read.
// Both P/E candidates are optional; peExclExtraTTM is preferred.
type FinancialMetrics struct {
	Metric struct {
		PeExclExtraTTM     *float64 `json:"peExclExtraTTM"`
		PeNormalizedAnnual *float64 `json:"peNormalizedAnnual"`
	} `json:"metric"`
}

type FinnhubClient struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

func NewFinnhubClient(apiKey string) *FinnhubClient {
	client := resty.New()
	client.SetTimeout(10 * time.Second)

	return &FinnhubClient{
		client:  client,
		baseURL: finnhubBaseURL,
		apiKey:  apiKey,
	}
}

// HasCredential reports whether an API key is configured. Without one the
// enrichment pipeline runs in degraded mode.
func (f *FinnhubClient) HasCredential() bool {
	return f.apiKey != ""
}

func (f *FinnhubClient) get(path string, params map[string]string, out interface{}) error {
	resp, err := f.client.R().
		SetQueryParams(params).
		SetQueryParam("token", f.apiKey).
		Get(f.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %v", path, err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("unexpected status code %d from %s: %s", resp.StatusCode(), path, resp.String())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to parse %s response: %v", path, err)
	}

	return nil
}

func (f *FinnhubClient) GetQuote(symbol string) (*Quote, error) {
	var quote Quote
	if err := f.get("/quote", map[string]string{"symbol": symbol}, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (f *FinnhubClient) GetCompanyProfile(symbol string) (*CompanyProfile, error) {
	var profile CompanyProfile
	if err := f.get("/stock/profile2", map[string]string{"symbol": symbol}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (f *FinnhubClient) GetFinancialMetrics(symbol string) (*FinancialMetrics, error) {
	var metrics FinancialMetrics
	params := map[string]string{"symbol": symbol, "metric": "all"}
	if err := f.get("/stock/metric", params, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

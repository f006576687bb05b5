package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// indexBasicResponse is the Naver mobile index quote payload
type indexBasicResponse struct {
	ClosePrice        string `json:"closePrice"`        // "2,655.28"
	FluctuationsRatio string `json:"fluctuationsRatio"` // "+0.52"
	LocalTradedAt     string `json:"localTradedAt"`     // RFC3339-ish
}

// FetchIndexQuote fetches the latest quote for one index (KOSPI or
// KOSDAQ) with its day-over-day change percentage.
// ⭐ SSOT: 지수 시세 호출은 이 함수에서만
func (c *Client) FetchIndexQuote(ctx context.Context, code string) (*IndexQuote, error) {
	url := fmt.Sprintf("%s/api/index/%s/basic", c.baseURL, code)

	body, err := c.httpClient.GetBody(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch index quote: %w", err)
	}

	var resp indexBasicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode index quote: %w", err)
	}
	if resp.ClosePrice == "" {
		return nil, fmt.Errorf("empty index quote for %s", code)
	}

	quote := &IndexQuote{
		Code:      code,
		Value:     parseSignedNumber(resp.ClosePrice),
		ChangePct: parseSignedNumber(resp.FluctuationsRatio),
	}
	if t, err := time.Parse(time.RFC3339, resp.LocalTradedAt); err == nil {
		quote.TradeDate = t
	}

	c.logger.WithFields(map[string]interface{}{
		"index":      code,
		"value":      quote.Value,
		"change_pct": quote.ChangePct,
	}).Debug("Fetched index quote")
	return quote, nil
}

// FetchMarketTrend fetches market-wide investor net trading for one
// index from the Naver mobile trend API
func (c *Client) FetchMarketTrend(ctx context.Context, code string) (*MarketTrend, error) {
	url := fmt.Sprintf("%s/api/index/%s/trend", c.baseURL, code)

	body, err := c.httpClient.GetBody(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch market trend: %w", err)
	}

	var resp struct {
		Bizdate          string `json:"bizdate"` // YYYYMMDD
		PersonalValue    string `json:"personalValue"`
		ForeignValue     string `json:"foreignValue"`
		InstitutionValue string `json:"institutionalValue"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode market trend: %w", err)
	}
	if resp.Bizdate == "" {
		return nil, nil
	}

	tradeDate, err := time.Parse("20060102", resp.Bizdate)
	if err != nil {
		return nil, fmt.Errorf("parse trade date: %w", err)
	}

	trend := &MarketTrend{
		TradeDate:      tradeDate,
		ForeignNet:     parseSignedNumber(resp.ForeignValue),
		InstitutionNet: parseSignedNumber(resp.InstitutionValue),
		IndividualNet:  parseSignedNumber(resp.PersonalValue),
	}

	c.logger.WithFields(map[string]interface{}{
		"index":       code,
		"trade_date":  trend.TradeDate.Format("2006-01-02"),
		"foreign_net": trend.ForeignNet,
		"inst_net":    trend.InstitutionNet,
	}).Debug("Fetched market trend")
	return trend, nil
}

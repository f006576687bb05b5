package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/nice/internal/contracts"
)

// GetHistory fetches daily bars from the Naver Finance chart API.
// Implements contracts.MarketDataProvider. An empty history is a valid
// result, not an error.
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
func (c *Client) GetHistory(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceHistory, error) {
	url := fmt.Sprintf(
		"https://fchart.stock.naver.com/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		ticker, from.Format("20060102"), to.Format("20060102"),
	)

	body, err := c.fetchBody(ctx, url)
	if err != nil {
		return nil, err
	}

	history, err := c.parsePriceResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse price response: %w", err)
	}

	// 일자 오름차순 보장
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   history.Len(),
	}).Debug("Fetched price history")
	return history, nil
}

// parsePriceResponse parses the chart API payload, a quasi-JSON array
// of rows with single quotes
func (c *Client) parsePriceResponse(body string) (contracts.PriceHistory, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return c.parsePriceJSON(rawData), nil
	}

	// 단일 행 깨짐 등으로 JSON 파싱이 실패하면 정규식으로 복구
	return c.parsePriceRegex(body), nil
}

// parsePriceJSON converts the row arrays into bars, skipping the header
func (c *Client) parsePriceJSON(rawData [][]interface{}) contracts.PriceHistory {
	var history contracts.PriceHistory
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // 헤더 행
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		date, err := time.Parse("20060102", strings.Trim(dateStr, "\""))
		if err != nil {
			continue
		}

		history = append(history, contracts.PriceBar{
			Date:   date,
			Open:   toInt64(row[1]),
			High:   toInt64(row[2]),
			Low:    toInt64(row[3]),
			Close:  toInt64(row[4]),
			Volume: toInt64(row[5]),
		})
	}
	return history
}

var priceRowRe = regexp.MustCompile(`\["(\d{8})",\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+)\]`)

// parsePriceRegex recovers bars row by row when JSON decoding fails
func (c *Client) parsePriceRegex(body string) contracts.PriceHistory {
	var history contracts.PriceHistory
	for _, match := range priceRowRe.FindAllStringSubmatch(body, -1) {
		date, err := time.Parse("20060102", match[1])
		if err != nil {
			continue
		}

		open, _ := strconv.ParseInt(match[2], 10, 64)
		high, _ := strconv.ParseInt(match[3], 10, 64)
		low, _ := strconv.ParseInt(match[4], 10, 64)
		closePrice, _ := strconv.ParseInt(match[5], 10, 64)
		volume, _ := strconv.ParseInt(match[6], 10, 64)

		history = append(history, contracts.PriceBar{
			Date: date, Open: open, High: high, Low: low,
			Close: closePrice, Volume: volume,
		})
	}
	return history
}

// toInt64 converts chart API cell values to int64
func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	default:
		return 0
	}
}

package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/nice/internal/contracts"
)

// krxListingResponse is the data.krx.co.kr market cap table payload
type krxListingResponse struct {
	OutBlock1 []krxListingRow `json:"OutBlock_1"`
}

type krxListingRow struct {
	ISU_SRT_CD string `json:"ISU_SRT_CD"` // 종목코드 (단축)
	ISU_ABBRV  string `json:"ISU_ABBRV"`  // 종목명
	TDD_CLSPRC string `json:"TDD_CLSPRC"` // 종가
	MKTCAP     string `json:"MKTCAP"`     // 시가총액 (원)
	LIST_SHRS  string `json:"LIST_SHRS"`  // 상장주식수
}

// FetchListings fetches the full listing table with market caps for
// one market from the KRX data portal. Used to seed the scan universe.
// ⭐ SSOT: KRX 상장 종목/시가총액 조회는 이 함수에서만
func (c *Client) FetchListings(ctx context.Context, market string) ([]contracts.Instrument, error) {
	krxURL := "http://data.krx.co.kr/comm/bldAttendant/getJsonData.cmd"

	var mktID string
	switch strings.ToUpper(market) {
	case "KOSPI":
		mktID = "STK"
	case "KOSDAQ":
		mktID = "KSQ"
	default:
		return nil, fmt.Errorf("unsupported market: %s", market)
	}

	// 장 마감 전에는 전일 기준, 주말은 금요일 기준
	tradeDate := time.Now()
	if tradeDate.Hour() < 16 {
		tradeDate = tradeDate.AddDate(0, 0, -1)
	}
	for tradeDate.Weekday() == time.Saturday || tradeDate.Weekday() == time.Sunday {
		tradeDate = tradeDate.AddDate(0, 0, -1)
	}

	formData := url.Values{
		"bld":         {"dbms/MDC/STAT/standard/MDCSTAT01501"},
		"locale":      {"ko_KR"},
		"mktId":       {mktID},
		"trdDd":       {tradeDate.Format("20060102")},
		"share":       {"1"},
		"money":       {"1"},
		"csvxls_isNo": {"false"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, krxURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// KRX는 브라우저 헤더 없는 요청을 차단한다
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Origin", "http://data.krx.co.kr")
	req.Header.Set("Referer", "http://data.krx.co.kr/contents/MDC/MDI/mdiLoader/index.cmd?menuId=MDC0201020101")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("KRX API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KRX API returned status %d", resp.StatusCode)
	}

	var apiResp krxListingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode KRX response: %w", err)
	}
	if len(apiResp.OutBlock1) == 0 {
		c.logger.WithField("market", market).Warn("KRX listing table is empty")
		return nil, nil
	}

	return c.parseListings(apiResp.OutBlock1, strings.ToUpper(market)), nil
}

// parseListings converts KRX rows into instruments, dropping rows
// without a code or shares outstanding (ETF placeholders etc.)
func (c *Client) parseListings(rows []krxListingRow, market string) []contracts.Instrument {
	instruments := make([]contracts.Instrument, 0, len(rows))
	for _, row := range rows {
		shares := int64(parseSignedNumber(row.LIST_SHRS))
		if row.ISU_SRT_CD == "" || shares == 0 {
			continue
		}

		capKRW := parseSignedNumber(row.MKTCAP)
		instruments = append(instruments, contracts.Instrument{
			Ticker:    row.ISU_SRT_CD,
			Name:      row.ISU_ABBRV,
			Market:    market,
			MarketCap: capKRW / 1_000_000_000, // 원 → 십억원
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"market": market,
		"count":  len(instruments),
	}).Info("Parsed KRX listings")
	return instruments
}

// FetchAllListings fetches KOSPI and KOSDAQ listing tables
func (c *Client) FetchAllListings(ctx context.Context) ([]contracts.Instrument, error) {
	kospi, err := c.FetchListings(ctx, "KOSPI")
	if err != nil {
		return nil, fmt.Errorf("fetch KOSPI listings: %w", err)
	}

	kosdaq, err := c.FetchListings(ctx, "KOSDAQ")
	if err != nil {
		return nil, fmt.Errorf("fetch KOSDAQ listings: %w", err)
	}

	return append(kospi, kosdaq...), nil
}

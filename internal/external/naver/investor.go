package naver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FetchInvestorTrades fetches daily foreign/institutional net trading
// from the Naver Finance investor page, following pagination until the
// window is covered.
// ⭐ SSOT: 종목별 투자자 수급 조회는 이 함수에서만
func (c *Client) FetchInvestorTrades(ctx context.Context, ticker string, from, to time.Time) ([]InvestorTrade, error) {
	var allTrades []InvestorTrade
	noDataPages := 0

	// 페이지네이션 (최대 150페이지)
	for page := 1; page <= 150; page++ {
		select {
		case <-ctx.Done():
			return allTrades, ctx.Err()
		default:
		}

		url := fmt.Sprintf("https://finance.naver.com/item/frgn.naver?code=%s&page=%d", ticker, page)
		body, err := c.fetchBody(ctx, url)
		if err != nil {
			return allTrades, err
		}

		trades, lastDate, hasMore := c.parseInvestorHTML(body, ticker, from, to)
		allTrades = append(allTrades, trades...)

		// 기준일보다 이전 데이터면 종료
		if !lastDate.IsZero() && lastDate.Before(from) {
			break
		}
		if !hasMore {
			break
		}

		// 연속으로 데이터 없으면 종료
		if lastDate.IsZero() {
			noDataPages++
			if noDataPages >= 3 {
				break
			}
		} else {
			noDataPages = 0
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(allTrades),
	}).Debug("Fetched investor trades")
	return allTrades, nil
}

var investorDateRe = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// parseInvestorHTML extracts trade rows from one investor page
func (c *Client) parseInvestorHTML(html, ticker string, from, to time.Time) ([]InvestorTrade, time.Time, bool) {
	var trades []InvestorTrade
	var lastDate time.Time

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return trades, lastDate, false
	}

	// 두번째 type2 테이블이 데이터 테이블
	tables := doc.Find("table.type2")
	if tables.Length() < 2 {
		return trades, lastDate, false
	}

	tables.Eq(1).Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !investorDateRe.MatchString(dateText) {
			return
		}
		tradeDate, err := time.Parse("2006.01.02", dateText)
		if err != nil {
			return
		}

		lastDate = tradeDate
		if tradeDate.Before(from) || tradeDate.After(to) {
			return
		}

		// 컬럼: 날짜 | 종가 | 대비 | 등락률 | 거래량 | 기관 | 외국인
		trades = append(trades, InvestorTrade{
			Ticker:     ticker,
			TradeDate:  tradeDate,
			InstNet:    parseNum(cells.Eq(5).Text()),
			ForeignNet: parseNum(cells.Eq(6).Text()),
		})
	})

	hasMore := doc.Find(".pgRR").Length() > 0
	return trades, lastDate, hasMore
}

// parseNum parses signed comma-grouped numbers like "+50,000"
func parseNum(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "+", "")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/nice/pkg/httputil"
	"github.com/wonny/nice/pkg/logger"
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	httpClient.
		WithHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36").
		WithHeader("Referer", "https://finance.naver.com/")

	return &Client{
		httpClient: httpClient,
		logger:     log,
	}
}

// fetchBody performs a GET and returns the body as a string
func (c *Client) fetchBody(ctx context.Context, url string) (string, error) {
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body failed: %w", err)
	}
	return string(body), nil
}

// InvestorTrade is one day of investor net trading for a stock
type InvestorTrade struct {
	Ticker     string
	TradeDate  time.Time
	ForeignNet int64 // 외국인 순매수 (주)
	InstNet    int64 // 기관 순매수 (주)
}

package naver

import (
	"testing"

	"github.com/wonny/nice/pkg/logger"
)

func testClient() *Client {
	return &Client{logger: logger.Nop()}
}

func TestParsePriceJSON(t *testing.T) {
	tests := []struct {
		name    string
		rawData [][]interface{}
		want    int // expected bar count
	}{
		{
			name: "valid data with header",
			rawData: [][]interface{}{
				{"날짜", "시가", "고가", "저가", "종가", "거래량"},
				{"20240115", 72300.0, 73000.0, 72000.0, 72500.0, 1000000.0},
				{"20240116", 72500.0, 73500.0, 72300.0, 73000.0, 1200000.0},
			},
			want: 2,
		},
		{
			name: "valid data with string numbers",
			rawData: [][]interface{}{
				{"날짜", "시가", "고가", "저가", "종가", "거래량"},
				{"20240115", "72300", "73000", "72000", "72500", "1000000"},
			},
			want: 1,
		},
		{
			name:    "empty data",
			rawData: [][]interface{}{},
			want:    0,
		},
		{
			name: "rows with insufficient columns",
			rawData: [][]interface{}{
				{"날짜", "시가"},
				{"20240115", 72300.0, 73000.0},
			},
			want: 0,
		},
		{
			name: "invalid date skipped",
			rawData: [][]interface{}{
				{"날짜", "시가", "고가", "저가", "종가", "거래량"},
				{"notadate", 72300.0, 73000.0, 72000.0, 72500.0, 1000000.0},
				{"20240116", 72500.0, 73500.0, 72300.0, 73000.0, 1200000.0},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testClient().parsePriceJSON(tt.rawData)
			if got.Len() != tt.want {
				t.Errorf("parsePriceJSON() got %d bars, want %d", got.Len(), tt.want)
			}
		})
	}
}

func TestParsePriceJSONValues(t *testing.T) {
	rawData := [][]interface{}{
		{"날짜", "시가", "고가", "저가", "종가", "거래량"},
		{"20240115", 72300.0, 73000.0, 72000.0, 72500.0, 1000000.0},
	}

	history := testClient().parsePriceJSON(rawData)
	if history.Len() != 1 {
		t.Fatalf("got %d bars", history.Len())
	}

	bar := history[0]
	if bar.Date.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("Date = %v", bar.Date)
	}
	if bar.Open != 72300 || bar.High != 73000 || bar.Low != 72000 || bar.Close != 72500 {
		t.Errorf("OHLC = %d/%d/%d/%d", bar.Open, bar.High, bar.Low, bar.Close)
	}
	if bar.Volume != 1000000 {
		t.Errorf("Volume = %d", bar.Volume)
	}
}

func TestParsePriceResponseRegexFallback(t *testing.T) {
	// Broken quasi-JSON forces the regex path
	body := `[["20240115", 72300, 73000, 72000, 72500, 1000000],
		["20240116", 72500, 73500, 72300, 73000, 1200000],` // trailing comma, unclosed

	history, err := testClient().parsePriceResponse(body)
	if err != nil {
		t.Fatal(err)
	}
	if history.Len() != 2 {
		t.Errorf("got %d bars, want 2 via regex fallback", history.Len())
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int64
	}{
		{72300.0, 72300},
		{int64(5), 5},
		{7, 7},
		{"123", 123},
		{"abc", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := toInt64(tt.in); got != tt.want {
			t.Errorf("toInt64(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

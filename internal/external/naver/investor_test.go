package naver

import (
	"testing"
	"time"
)

func TestParseInvestorHTML(t *testing.T) {
	// Sample HTML from the Naver Finance investor page
	sampleHTML := `
		<html>
		<body>
		<table class="type2">
			<tr><th>Header</th></tr>
		</table>
		<table class="type2">
			<tr>
				<td>2024.01.15</td>
				<td>72,500</td>
				<td>+500</td>
				<td>+0.69%</td>
				<td>1,000,000</td>
				<td>+50,000</td>
				<td>+30,000</td>
			</tr>
			<tr>
				<td>2024.01.16</td>
				<td>73,000</td>
				<td>+500</td>
				<td>+0.69%</td>
				<td>1,200,000</td>
				<td>-60,000</td>
				<td>+40,000</td>
			</tr>
			<tr>
				<td>invalid date</td>
				<td>73,000</td>
			</tr>
		</table>
		</body>
		</html>
	`

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	trades, lastDate, hasMore := testClient().parseInvestorHTML(sampleHTML, "005930", from, to)

	if len(trades) != 2 {
		t.Fatalf("parseInvestorHTML() got %d trades, want 2", len(trades))
	}

	first := trades[0]
	if first.Ticker != "005930" {
		t.Errorf("Ticker = %s, want 005930", first.Ticker)
	}
	if first.TradeDate.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("TradeDate = %v", first.TradeDate)
	}
	if first.InstNet != 50000 {
		t.Errorf("InstNet = %d, want 50000", first.InstNet)
	}
	if first.ForeignNet != 30000 {
		t.Errorf("ForeignNet = %d, want 30000", first.ForeignNet)
	}

	second := trades[1]
	if second.InstNet != -60000 {
		t.Errorf("InstNet = %d, want -60000", second.InstNet)
	}

	if lastDate.Format("2006-01-02") != "2024-01-16" {
		t.Errorf("lastDate = %v", lastDate)
	}
	if hasMore {
		t.Error("hasMore = true, want false without .pgRR")
	}
}

func TestParseInvestorHTMLDateFilter(t *testing.T) {
	sampleHTML := `
		<table class="type2"><tr><th>h</th></tr></table>
		<table class="type2">
			<tr>
				<td>2023.12.29</td><td>70,000</td><td>0</td><td>0%</td>
				<td>900,000</td><td>+10,000</td><td>+20,000</td>
			</tr>
		</table>
		<td class="pgRR"><a href="#">next</a></td>
	`

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	trades, lastDate, hasMore := testClient().parseInvestorHTML(sampleHTML, "005930", from, to)

	if len(trades) != 0 {
		t.Errorf("got %d trades, want 0 outside window", len(trades))
	}
	if lastDate.IsZero() {
		t.Error("lastDate must still track out-of-window rows")
	}
	if !hasMore {
		t.Error("hasMore = false, want true with .pgRR present")
	}
}

func TestParseNum(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"+50,000", 50000},
		{"-1,240,182", -1240182},
		{"0", 0},
		{"", 0},
		{"-", 0},
		{"  +12  ", 12},
	}
	for _, tt := range tests {
		if got := parseNum(tt.in); got != tt.want {
			t.Errorf("parseNum(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

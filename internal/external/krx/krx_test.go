package krx

import (
	"testing"

	"github.com/wonny/nice/pkg/logger"
)

func TestParseSignedNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"positive with comma", "+1,459,781", 1459781},
		{"negative with comma", "-1,240,182", -1240182},
		{"positive without sign", "1000000", 1000000},
		{"negative", "-500000", -500000},
		{"decimal ratio", "+0.52", 0.52},
		{"negative decimal", "-1.87", -1.87},
		{"index value", "2,655.28", 2655.28},
		{"with spaces", " +1,234 ", 1234},
		{"zero", "0", 0},
		{"empty string", "", 0},
		{"bare dash", "-", 0},
		{"invalid", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSignedNumber(tt.input); got != tt.want {
				t.Errorf("parseSignedNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseListings(t *testing.T) {
	c := &Client{logger: logger.Nop()}

	rows := []krxListingRow{
		{ISU_SRT_CD: "005930", ISU_ABBRV: "삼성전자", TDD_CLSPRC: "73,000", MKTCAP: "435,789,000,000,000", LIST_SHRS: "5,969,782,550"},
		{ISU_SRT_CD: "000660", ISU_ABBRV: "SK하이닉스", TDD_CLSPRC: "135,000", MKTCAP: "98,270,000,000,000", LIST_SHRS: "728,002,365"},
		{ISU_SRT_CD: "", ISU_ABBRV: "코드없음", MKTCAP: "1,000", LIST_SHRS: "100"},
		{ISU_SRT_CD: "999999", ISU_ABBRV: "주식수없음", MKTCAP: "1,000", LIST_SHRS: "0"},
	}

	instruments := c.parseListings(rows, "KOSPI")
	if len(instruments) != 2 {
		t.Fatalf("got %d instruments, want 2", len(instruments))
	}

	first := instruments[0]
	if first.Ticker != "005930" || first.Name != "삼성전자" || first.Market != "KOSPI" {
		t.Errorf("instrument = %+v", first)
	}
	// 435.789조원 → 435,789십억원
	if first.MarketCap != 435_789 {
		t.Errorf("MarketCap = %f, want 435789", first.MarketCap)
	}
}

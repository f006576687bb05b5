package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultScanConfig() ScanConfig {
	return ScanConfig{
		Workers:          20,
		StrategyMode:     "vcp_flow",
		RegimeFloor:      30,
		MinTurnoverKRW:   10_000_000_000,
		MinMarketCapBln:  50.0,
		ForeignStrongBuy: 5_000_000,
		InstStrongBuy:    3_000_000,
		Weights: GateWeights{
			Liquidity: 0.2,
			Technical: 0.4,
			Flow:      0.2,
			Quality:   0.2,
		},
		ScoreThreshold: 50,
		ThemeBonus:     10,
		TradeRule: TradeRuleConfig{
			StopLossPct:     7.0,
			MaxPivotDropPct: 10.0,
			TP1Pct:          10.0,
			TP2Pct:          20.0,
			TimeStopDays:    15,
			TotalCapital:    10_000_000,
			PositionSizePct: 10.0,
		},
	}
}

func TestScanConfigValidate(t *testing.T) {
	cfg := defaultScanConfig()
	require.NoError(t, cfg.Validate())
}

func TestScanConfigValidateFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScanConfig)
	}{
		{
			name:   "weights not summing to 1.0",
			mutate: func(s *ScanConfig) { s.Weights.Technical = 0.5 },
		},
		{
			name:   "zero weight",
			mutate: func(s *ScanConfig) { s.Weights.Flow = 0 },
		},
		{
			name:   "negative threshold",
			mutate: func(s *ScanConfig) { s.ScoreThreshold = -1 },
		},
		{
			name:   "threshold above 100",
			mutate: func(s *ScanConfig) { s.ScoreThreshold = 101 },
		},
		{
			name:   "unknown strategy mode",
			mutate: func(s *ScanConfig) { s.StrategyMode = "yolo" },
		},
		{
			name:   "zero workers",
			mutate: func(s *ScanConfig) { s.Workers = 0 },
		},
		{
			name:   "zero turnover floor",
			mutate: func(s *ScanConfig) { s.MinTurnoverKRW = 0 },
		},
		{
			name:   "stop loss out of range",
			mutate: func(s *ScanConfig) { s.TradeRule.StopLossPct = 100 },
		},
		{
			name:   "tp2 below tp1",
			mutate: func(s *ScanConfig) { s.TradeRule.TP2Pct = 5.0 },
		},
		{
			name:   "zero time stop",
			mutate: func(s *ScanConfig) { s.TradeRule.TimeStopDays = 0 },
		},
		{
			name:   "position size over 100",
			mutate: func(s *ScanConfig) { s.TradeRule.PositionSizePct = 150 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultScanConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Scan.Workers)
	assert.Equal(t, "vcp_flow", cfg.Scan.StrategyMode)
	assert.Equal(t, 50, cfg.Scan.ScoreThreshold)
	assert.Equal(t, 10_000_000_000.0, cfg.Scan.MinTurnoverKRW)
	assert.Equal(t, 7.0, cfg.Scan.TradeRule.StopLossPct)
	assert.Equal(t, 15, cfg.Scan.TradeRule.TimeStopDays)
}

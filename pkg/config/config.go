package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Scan pipeline
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ScanConfig holds scan pipeline parameters
// ⭐ SSOT: 게이트 임계값과 스코어링 가중치는 여기서만
type ScanConfig struct {
	Workers      int    // worker pool width
	StrategyMode string // vcp_only, flow_only, vcp_flow, vcp_flow_macro, full_ai

	// Gate thresholds
	RegimeFloor      int     // L0: fail below this regime score
	MinTurnoverKRW   float64 // L1: 20일 평균 거래대금 하한 (원)
	MinMarketCapBln  float64 // L4: 시가총액 하한 (십억원)
	ForeignStrongBuy int64   // L3 threshold
	InstStrongBuy    int64   // L3 threshold

	// Composite scoring
	Weights        GateWeights
	ScoreThreshold int // acceptance threshold
	ThemeBonus     int

	// Trade rule (SSOT for plan builder)
	TradeRule TradeRuleConfig

	// Evidence
	EvidenceDir string

	// Theme catalog
	ThemeFile string
}

// GateWeights are the composite score weights for L1-L4.
// L0 is pass/fail only and carries no weight.
type GateWeights struct {
	Liquidity float64 // L1
	Technical float64 // L2
	Flow      float64 // L3
	Quality   float64 // L4
}

// TradeRuleConfig holds the execution rules for plan building
type TradeRuleConfig struct {
	StopLossPct     float64 // fixed SL, percent
	MaxPivotDropPct float64 // pivot deeper than this falls back to fixed SL
	TP1Pct          float64
	TP2Pct          float64
	TimeStopDays    int
	TotalCapital    float64 // KRW
	PositionSizePct float64 // percent of capital per trade
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Scan: ScanConfig{
			Workers:      getEnvAsInt("SCAN_WORKERS", 20),
			StrategyMode: getEnv("SCAN_STRATEGY_MODE", "vcp_flow"),

			RegimeFloor:      getEnvAsInt("GATE_REGIME_FLOOR", 30),
			MinTurnoverKRW:   getEnvAsFloat("GATE_MIN_TURNOVER_KRW", 10_000_000_000),
			MinMarketCapBln:  getEnvAsFloat("GATE_MIN_MARKET_CAP_BLN", 50.0),
			ForeignStrongBuy: int64(getEnvAsInt("GATE_FOREIGN_STRONG_BUY", 5_000_000)),
			InstStrongBuy:    int64(getEnvAsInt("GATE_INST_STRONG_BUY", 3_000_000)),

			Weights: GateWeights{
				Liquidity: getEnvAsFloat("WEIGHT_LIQUIDITY", 0.2),
				Technical: getEnvAsFloat("WEIGHT_TECHNICAL", 0.4),
				Flow:      getEnvAsFloat("WEIGHT_FLOW", 0.2),
				Quality:   getEnvAsFloat("WEIGHT_QUALITY", 0.2),
			},
			ScoreThreshold: getEnvAsInt("SCORE_THRESHOLD", 50),
			ThemeBonus:     getEnvAsInt("THEME_BONUS", 10),

			TradeRule: TradeRuleConfig{
				StopLossPct:     getEnvAsFloat("TRADE_STOP_LOSS_PCT", 7.0),
				MaxPivotDropPct: getEnvAsFloat("TRADE_MAX_PIVOT_DROP_PCT", 10.0),
				TP1Pct:          getEnvAsFloat("TRADE_TP1_PCT", 10.0),
				TP2Pct:          getEnvAsFloat("TRADE_TP2_PCT", 20.0),
				TimeStopDays:    getEnvAsInt("TRADE_TIME_STOP_DAYS", 15),
				TotalCapital:    getEnvAsFloat("TRADE_TOTAL_CAPITAL", 10_000_000),
				PositionSizePct: getEnvAsFloat("TRADE_POSITION_SIZE_PCT", 10.0),
			},

			EvidenceDir: getEnv("EVIDENCE_DIR", "data/evidence"),
			ThemeFile:   getEnv("THEME_FILE", "config/themes.yaml"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ValidStrategyModes are the supported A/B strategy modes
var ValidStrategyModes = []string{"vcp_only", "flow_only", "vcp_flow", "vcp_flow_macro", "full_ai"}

// validate checks required values and scoring invariants.
// Invalid weights or thresholds must fail here, before any scan cycle runs.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	return c.Scan.Validate()
}

// Validate checks the scan configuration invariants
func (s *ScanConfig) Validate() error {
	if s.Workers <= 0 {
		return fmt.Errorf("SCAN_WORKERS must be positive, got %d", s.Workers)
	}

	valid := false
	for _, m := range ValidStrategyModes {
		if s.StrategyMode == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("SCAN_STRATEGY_MODE %q is not a valid mode", s.StrategyMode)
	}

	w := s.Weights
	if w.Liquidity <= 0 || w.Technical <= 0 || w.Flow <= 0 || w.Quality <= 0 {
		return fmt.Errorf("gate weights must all be positive: %+v", w)
	}
	sum := w.Liquidity + w.Technical + w.Flow + w.Quality
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("gate weights must sum to 1.0, got %.3f", sum)
	}

	if s.ScoreThreshold < 0 || s.ScoreThreshold > 100 {
		return fmt.Errorf("SCORE_THRESHOLD must be in [0, 100], got %d", s.ScoreThreshold)
	}
	if s.MinTurnoverKRW <= 0 {
		return fmt.Errorf("GATE_MIN_TURNOVER_KRW must be positive")
	}
	if s.MinMarketCapBln < 0 {
		return fmt.Errorf("GATE_MIN_MARKET_CAP_BLN must not be negative")
	}

	r := s.TradeRule
	if r.StopLossPct <= 0 || r.StopLossPct >= 100 {
		return fmt.Errorf("TRADE_STOP_LOSS_PCT must be in (0, 100), got %.1f", r.StopLossPct)
	}
	if r.TP1Pct <= 0 || r.TP2Pct < r.TP1Pct {
		return fmt.Errorf("take profit targets must satisfy 0 < TP1 <= TP2")
	}
	if r.TimeStopDays <= 0 {
		return fmt.Errorf("TRADE_TIME_STOP_DAYS must be positive")
	}
	if r.PositionSizePct <= 0 || r.PositionSizePct > 100 {
		return fmt.Errorf("TRADE_POSITION_SIZE_PCT must be in (0, 100], got %.1f", r.PositionSizePct)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

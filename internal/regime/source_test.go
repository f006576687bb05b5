package regime

import "testing"

func TestCalcScore(t *testing.T) {
	tests := []struct {
		name   string
		kospi  float64
		kosdaq float64
		want   int
	}{
		{"flat market", 0, 0, 50},
		{"strong broad rally", 2.0, 2.5, 100}, // 50+20+20+10
		{"mild broad rally", 0.8, 0.8, 80},    // 50+10+10+10
		{"kospi only up", 1.0, 0, 60},
		{"strong broad decline", -2.0, -2.5, 0}, // 50-20-20-10
		{"mild broad decline", -0.8, -0.8, 20},
		{"mixed divergence", 1.6, -2.1, 50}, // +20-20, no breadth
		{"kosdaq threshold is looser", 0, 1.8, 60},
		{"boundary not crossed", 0.5, 0.5, 60}, // only breadth
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalcScore(tt.kospi, tt.kosdaq); got != tt.want {
				t.Errorf("CalcScore(%v, %v) = %d, want %d", tt.kospi, tt.kosdaq, got, tt.want)
			}
		})
	}
}

func TestCalcScoreClamped(t *testing.T) {
	for kospi := -3.0; kospi <= 3.0; kospi += 0.25 {
		for kosdaq := -3.0; kosdaq <= 3.0; kosdaq += 0.25 {
			got := CalcScore(kospi, kosdaq)
			if got < 0 || got > 100 {
				t.Fatalf("CalcScore(%v, %v) = %d outside [0, 100]", kospi, kosdaq, got)
			}
		}
	}
}

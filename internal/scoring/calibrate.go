package scoring

import (
	"math"

	"github.com/jonathan/fitscore/internal/types"
)

// Calibration defaults
const (
	DefaultCalibrationWindow = 10.0
	DefaultCalibrationBlend  = 0.8
)

// Calibrator blends a raw score with the observed success of similarly scored past results.
type Calibrator struct {
	// Window is the maximum distance between a past score and the raw score
	Window float64
	// Blend is the share of the raw score in the adjusted result
	Blend float64
}

// NewCalibrator returns a Calibrator with the default window and blend.
func NewCalibrator() Calibrator {
	return Calibrator{Window: DefaultCalibrationWindow, Blend: DefaultCalibrationBlend}
}

// Calibrate returns blend*raw + (1-blend)*term, clamped to [0, 100]. The term is the mean actual
// success of history records within the window, or 50 when none qualify.
func (c Calibrator) Calibrate(raw float64, history []types.HistoricalRecord) float64 {
	if math.IsNaN(raw) {
		raw = Neutral
	}
	return clampFloat(c.Blend*raw + (1-c.Blend)*c.AdjustmentTerm(raw, history))
}

// AdjustmentTerm is the mean actual success of history records within the window of raw.
func (c Calibrator) AdjustmentTerm(raw float64, history []types.HistoricalRecord) float64 {
	var sum float64
	matched := 0
	for _, record := range history {
		if math.Abs(record.OverallScore-raw) <= c.Window {
			sum += record.ActualSuccess
			matched++
		}
	}
	if matched == 0 {
		return Neutral
	}
	return sum / float64(matched)
}

// Calibrate applies the default calibrator.
func Calibrate(raw float64, history []types.HistoricalRecord) float64 {
	return NewCalibrator().Calibrate(raw, history)
}

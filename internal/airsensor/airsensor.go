// Package airsensor scores air quality readings and maps scores onto LED
// colors. Scores are 10-bit values from 0 (terrible) to 1023 (excellent).
package airsensor

import "github.com/sensenode/sensenode/internal/events"

// Score thresholds named after the color shown at that quality level.
const (
	ScoreRed        uint16 = 0
	ScoreOrange     uint16 = 128
	ScoreYellow     uint16 = 256
	ScoreLightGreen uint16 = 384
	ScoreGreen      uint16 = 512
	ScoreBlueGreen  uint16 = 640
	ScoreCyan       uint16 = 768
	ScoreLightBlue  uint16 = 896
	ScoreBlue       uint16 = 1023
)

// MaxScore is the best possible air quality score.
const MaxScore = ScoreBlue

// AverageScore is the initial score assumed before the first sample.
const AverageScore = ScoreCyan

// DefaultThreshold is the initial alarm threshold.
const DefaultThreshold = ScoreYellow

// gradientStop pairs a score with the color shown at exactly that score.
type gradientStop struct {
	score   uint16
	r, g, b uint8
}

var gradient = []gradientStop{
	{ScoreRed, 255, 0, 0},
	{ScoreOrange, 255, 165, 0},
	{ScoreYellow, 255, 255, 0},
	{ScoreLightGreen, 128, 255, 0},
	{ScoreGreen, 0, 255, 0},
	{ScoreBlueGreen, 0, 255, 128},
	{ScoreCyan, 0, 255, 255},
	{ScoreLightBlue, 0, 128, 255},
	{ScoreBlue, 0, 0, 255},
}

// LedValueForScore maps a score onto the red-to-blue quality gradient,
// interpolating linearly between the named stops. Scores above MaxScore
// clamp to blue.
func LedValueForScore(score uint16) events.LedValue {
	if score >= MaxScore {
		last := gradient[len(gradient)-1]
		return events.LedValue{R: last.r, G: last.g, B: last.b}
	}
	for i := 1; i < len(gradient); i++ {
		if score < gradient[i].score {
			lo, hi := gradient[i-1], gradient[i]
			span := hi.score - lo.score
			frac := score - lo.score
			return events.LedValue{
				R: lerp(lo.r, hi.r, frac, span),
				G: lerp(lo.g, hi.g, frac, span),
				B: lerp(lo.b, hi.b, frac, span),
			}
		}
	}
	last := gradient[len(gradient)-1]
	return events.LedValue{R: last.r, G: last.g, B: last.b}
}

// lerp linearly interpolates between a and b by numerator/denominator.
// Intermediate math runs in 32 bits to avoid overflow.
func lerp(a, b uint8, numerator, denominator uint16) uint8 {
	a32, b32 := int32(a), int32(b)
	return uint8(a32 + (b32-a32)*int32(numerator)/int32(denominator))
}

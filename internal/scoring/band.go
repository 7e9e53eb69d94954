package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Module is an IELTS test module.
type Module string

const (
	ModuleListening Module = "listening"
	ModuleReading   Module = "reading"
)

// ErrUnknownModule is returned for modules without a conversion table.
var ErrUnknownModule = errors.New("unknown module")

// MaxRawScore is the number of questions in a listening or reading test.
const MaxRawScore = 40

// ParseModule validates a module name.
func ParseModule(s string) (Module, error) {
	switch Module(strings.ToLower(strings.TrimSpace(s))) {
	case ModuleListening:
		return ModuleListening, nil
	case ModuleReading:
		return ModuleReading, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModule, s)
}

// Layout returns the section layout used for per-section tallies.
func (m Module) Layout() SectionLayout {
	if m == ModuleReading {
		return ReadingLayout
	}
	return ListeningLayout
}

type bandStep struct {
	min  int
	band float64
}

// Raw-score floors per band, highest first. Anything under the last
// floor is 3.5.
var (
	listeningBands = []bandStep{
		{39, 9.0}, {37, 8.5}, {35, 8.0}, {32, 7.5}, {30, 7.0}, {26, 6.5},
		{23, 6.0}, {18, 5.5}, {16, 5.0}, {13, 4.5}, {10, 4.0},
	}
	readingBands = []bandStep{
		{39, 9.0}, {37, 8.5}, {35, 8.0}, {33, 7.5}, {30, 7.0}, {27, 6.5},
		{23, 6.0}, {19, 5.5}, {15, 5.0}, {13, 4.5}, {10, 4.0},
	}
)

const floorBand = 3.5

// ToBand converts a raw correct count to a band score. Counts are
// clamped to 0..40.
func ToBand(correct int, m Module) (float64, error) {
	var table []bandStep
	switch m {
	case ModuleListening:
		table = listeningBands
	case ModuleReading:
		table = readingBands
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownModule, m)
	}

	if correct < 0 {
		correct = 0
	}
	if correct > MaxRawScore {
		correct = MaxRawScore
	}
	for _, step := range table {
		if correct >= step.min {
			return step.band, nil
		}
	}
	return floorBand, nil
}

// RoundingMode selects how averaged bands are rounded.
type RoundingMode string

const (
	// RoundLegacy keeps one decimal, rounding half up: 6.75 becomes 6.8.
	// Historical results were produced this way.
	RoundLegacy RoundingMode = "legacy"
	// RoundIELTS rounds to the nearest half band, with quarters going up:
	// 6.25 becomes 6.5 and 6.75 becomes 7.0.
	RoundIELTS RoundingMode = "ielts"
)

// ParseRoundingMode validates a configured rounding mode.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch RoundingMode(strings.ToLower(strings.TrimSpace(s))) {
	case RoundLegacy:
		return RoundLegacy, nil
	case RoundIELTS:
		return RoundIELTS, nil
	}
	return "", fmt.Errorf("unknown band rounding mode %q", s)
}

// OverallBand averages the listening and reading bands.
func OverallBand(listening, reading float64, mode RoundingMode) float64 {
	return AverageBands(mode, listening, reading)
}

// AverageBands averages any number of module bands. It returns 0 when no
// band is given.
func AverageBands(mode RoundingMode, bands ...float64) float64 {
	if len(bands) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bands {
		sum += b
	}
	return roundBand(sum/float64(len(bands)), mode)
}

func roundBand(avg float64, mode RoundingMode) float64 {
	if mode == RoundIELTS {
		whole := math.Floor(avg)
		switch frac := avg - whole; {
		case frac < 0.25:
			return whole
		case frac < 0.75:
			return whole + 0.5
		default:
			return whole + 1
		}
	}
	// One decimal, half up. The small epsilon absorbs binary error in
	// averages such as 6.05.
	return math.Floor(avg*10+0.5+1e-9) / 10
}

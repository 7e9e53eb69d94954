package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBand_Listening(t *testing.T) {
	tests := []struct {
		correct int
		want    float64
	}{
		{40, 9.0}, {39, 9.0}, {38, 8.5}, {35, 8.0}, {34, 7.5}, {32, 7.5},
		{31, 7.0}, {30, 7.0}, {29, 6.5}, {26, 6.5}, {25, 6.0}, {23, 6.0},
		{22, 5.5}, {18, 5.5}, {17, 5.0}, {16, 5.0}, {15, 4.5}, {13, 4.5},
		{12, 4.0}, {10, 4.0}, {9, 3.5}, {0, 3.5},
	}
	for _, tc := range tests {
		got, err := ToBand(tc.correct, ModuleListening)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "correct=%d", tc.correct)
	}
}

func TestToBand_Reading(t *testing.T) {
	tests := []struct {
		correct int
		want    float64
	}{
		{40, 9.0}, {37, 8.5}, {35, 8.0}, {34, 7.5}, {33, 7.5}, {32, 7.0},
		{30, 7.0}, {29, 6.5}, {27, 6.5}, {26, 6.0}, {23, 6.0}, {22, 5.5},
		{19, 5.5}, {18, 5.0}, {15, 5.0}, {14, 4.5}, {13, 4.5}, {10, 4.0}, {3, 3.5},
	}
	for _, tc := range tests {
		got, err := ToBand(tc.correct, ModuleReading)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "correct=%d", tc.correct)
	}
}

func TestToBand_Monotonic(t *testing.T) {
	for _, m := range []Module{ModuleListening, ModuleReading} {
		prev := 0.0
		for n := 0; n <= MaxRawScore; n++ {
			band, err := ToBand(n, m)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, band, prev, "%s correct=%d", m, n)
			prev = band
		}
	}
}

func TestToBand_ClampsAndRejectsUnknownModule(t *testing.T) {
	band, err := ToBand(55, ModuleReading)
	require.NoError(t, err)
	assert.Equal(t, 9.0, band)

	band, err = ToBand(-3, ModuleListening)
	require.NoError(t, err)
	assert.Equal(t, 3.5, band)

	_, err = ToBand(20, Module("writing"))
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestOverallBand(t *testing.T) {
	tests := []struct {
		name      string
		listening float64
		reading   float64
		mode      RoundingMode
		want      float64
	}{
		{"perfect", 9.0, 9.0, RoundLegacy, 9.0},
		{"perfect ielts", 9.0, 9.0, RoundIELTS, 9.0},
		{"legacy three quarters", 7.0, 6.5, RoundLegacy, 6.8},
		{"ielts three quarters", 7.0, 6.5, RoundIELTS, 7.0},
		{"legacy quarter", 6.0, 6.5, RoundLegacy, 6.3},
		{"ielts quarter", 6.0, 6.5, RoundIELTS, 6.5},
		{"whole", 6.0, 7.0, RoundIELTS, 6.5},
		{"same band", 5.5, 5.5, RoundLegacy, 5.5},
		{"unset mode is legacy", 7.0, 6.5, "", 6.8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OverallBand(tc.listening, tc.reading, tc.mode))
		})
	}
}

func TestAverageBands(t *testing.T) {
	assert.Equal(t, 0.0, AverageBands(RoundIELTS))
	// 6.125 rounds down to 6.0 under IELTS rules.
	assert.Equal(t, 6.0, AverageBands(RoundIELTS, 6.5, 6.0, 6.0, 6.0))
	// 6.375 rounds up to 6.5.
	assert.Equal(t, 6.5, AverageBands(RoundIELTS, 6.5, 6.5, 6.5, 6.0))
	assert.Equal(t, 6.4, AverageBands(RoundLegacy, 6.5, 6.5, 6.5, 6.0))
}

func TestScenario_FullMarksGiveNine(t *testing.T) {
	listening, err := ToBand(40, ModuleListening)
	require.NoError(t, err)
	reading, err := ToBand(40, ModuleReading)
	require.NoError(t, err)

	assert.Equal(t, 9.0, listening)
	assert.Equal(t, 9.0, reading)
	assert.Equal(t, 9.0, OverallBand(listening, reading, RoundLegacy))
}

func TestParseModuleAndRounding(t *testing.T) {
	m, err := ParseModule("Reading")
	require.NoError(t, err)
	assert.Equal(t, ModuleReading, m)
	assert.Equal(t, ReadingLayout, m.Layout())

	_, err = ParseModule("speaking")
	assert.ErrorIs(t, err, ErrUnknownModule)

	r, err := ParseRoundingMode("IELTS")
	require.NoError(t, err)
	assert.Equal(t, RoundIELTS, r)

	_, err = ParseRoundingMode("banker")
	assert.Error(t, err)
}

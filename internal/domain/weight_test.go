package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeight(t *testing.T) {
	cases := map[string]float64{
		"12.5":                    12.5,
		" 3 ":                     3,
		"12,5":                    12.5,
		"1,250.75":                1250.75,
		"":                        0,
		"abc":                     0,
		"NaN":                     0,
		"-4":                      0,
		"0.005":                   0.005,
		"1e400":                   0,
		"1e5000000":               0,
		"9999999999e-9999999":     0,
		"Inf":                     0,
		"+Inf":                    0,
		"1.5e2":                   0,
		"12.5.3":                  0,
		"1234567890123456":        0,
		"0.123456789012345678901": 0,
	}
	for raw, want := range cases {
		assert.InDelta(t, want, ParseWeight(raw), 1e-9, "ParseWeight(%q)", raw)
	}
}

func TestParseDecimal(t *testing.T) {
	value, err := ParseDecimal("1,250.75")
	require.NoError(t, err)
	assert.Equal(t, "1250.75", value.String())

	value, err = ParseDecimal("-3,5")
	require.NoError(t, err)
	assert.Equal(t, "-3.5", value.String())

	for _, raw := range []string{"", "1e400", "Inf", "0x10", " 1 2", ".5", "5."} {
		_, err := ParseDecimal(raw)
		assert.ErrorIs(t, err, ErrNotDecimal, "ParseDecimal(%q)", raw)
	}
}

func TestRound2NonFinite(t *testing.T) {
	assert.Equal(t, 0.0, Round2(math.Inf(1)))
	assert.Equal(t, 0.0, Round2(math.NaN()))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 10.0, Round2(9.999))
	assert.Equal(t, 0.0, Round2(0))
}

func TestTransactionTotalWeightSkipsMalformedItems(t *testing.T) {
	tx := Transaction{LineItems: []LineItem{
		{FabricName: "Katun", Weight: "2.5"},
		{FabricName: "Rayon", Weight: "oops"},
		{FabricName: "Linen", Weight: "1,5"},
	}}
	assert.InDelta(t, 4.0, tx.TotalWeightKg(), 1e-9)
}

func TestDateWindowContainsBounds(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	w := DateWindow{Start: start, End: end}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(end))
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(end.Add(time.Nanosecond)))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Aug", Month(8).Label(LocaleEnglish))
	assert.Equal(t, "Agu", Month(8).Label(LocaleIndonesian))
	assert.Equal(t, "Dec", Month(12).Label(Locale("fr")))
	assert.Equal(t, "", Month(13).Label(LocaleEnglish))
	assert.Equal(t, Month(1), Month(12).Next())
	assert.Equal(t, 0, Month(1).Index())
}

func TestEntityRankingLimit(t *testing.T) {
	r := EntityRanking{
		ByWeight: []EntityTotal{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		ByValue:  []EntityTotal{{Name: "c"}, {Name: "b"}, {Name: "a"}},
	}
	limited := r.Limit(2)
	assert.Len(t, limited.ByWeight, 2)
	assert.Len(t, limited.ByValue, 2)
	assert.Len(t, r.Limit(0).ByWeight, 3)
}

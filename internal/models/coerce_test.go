package models_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

func TestFlex_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `123.45`, 123.45},
		{"quoted number", `"123.45"`, 123.45},
		{"quoted with spaces", `" 42 "`, 42},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage string", `"abc"`, 0},
		{"boolean", `true`, 0},
		{"negative", `-7.5`, -7.5},
		{"zero", `0`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f models.Flex
			err := json.Unmarshal([]byte(tc.in), &f)
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.Float64())
		})
	}
}

func TestFlex_NeverNaN(t *testing.T) {
	// Upstream occasionally ships quoted NaN/Inf values.
	for _, in := range []string{`"NaN"`, `"Inf"`, `"-Inf"`, `"+Inf"`} {
		var f models.Flex
		require.NoError(t, json.Unmarshal([]byte(in), &f))
		assert.False(t, math.IsNaN(f.Float64()), "input %s", in)
		assert.False(t, math.IsInf(f.Float64(), 0), "input %s", in)
	}
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"67"`, "67"},
		{`67`, "67"},
		{`null`, ""},
		{`true`, "true"},
	}
	for _, tc := range cases {
		var s models.FlexString
		require.NoError(t, json.Unmarshal([]byte(tc.in), &s))
		assert.Equal(t, tc.want, s.String())
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-06-20", models.NormalizeDate("2025-06-20T17:00:00.000Z"))
	assert.Equal(t, "2025-06-20", models.NormalizeDate("2025-06-20"))
	assert.Equal(t, "", models.NormalizeDate(""))
}

func TestExtractProductName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Poster_Oil Change_99 Ribu", "Oil Change"},
		{"Poster_ Oil Change _99 Ribu", "Oil Change"},
		{"Video_Tune Up_199 Ribu_Extra", "Tune Up"},
		{"Brand Awareness", "Brand Awareness"},
		{"One_Two", "One_Two"},
		{"", "Unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, models.ExtractProductName(tc.in), "input %q", tc.in)
	}
}

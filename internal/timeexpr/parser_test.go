package timeexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letiantian/reminder/internal/dueat"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		present []Field
		values  map[Field]int
	}{
		{"1D2h3m4s", []Field{Day, Hour, Minute, Second}, map[Field]int{Day: 1, Hour: 2, Minute: 3, Second: 4}},
		{"2025Y10M12D15h22m30s", []Field{Year, Month, Day, Hour, Minute, Second},
			map[Field]int{Year: 2025, Month: 10, Day: 12, Hour: 15, Minute: 22, Second: 30}},
		{"13h2m", []Field{Hour, Minute}, map[Field]int{Hour: 13, Minute: 2}},
		{"360s", []Field{Second}, map[Field]int{Second: 360}},
		{"3M", []Field{Month}, map[Field]int{Month: 3}},
		{"  5m ", []Field{Minute}, map[Field]int{Minute: 5}},
		{"2Y30s", []Field{Year, Second}, map[Field]int{Year: 2, Second: 30}},
		{"007s", []Field{Second}, map[Field]int{Second: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, err := Parse(tt.in)
			require.NoError(t, err)

			for f := Year; f < numFields; f++ {
				want, ok := tt.values[f]
				assert.Equal(t, ok, expr.Has(f), "presence of %s", f)
				assert.Equal(t, want, expr.Get(f), "value of %s", f)
			}
			assert.Len(t, tt.values, len(tt.present))
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"abc",
		"5",
		"h",
		"s5",
		"5x",
		"-3D",
		"3m2h",
		"1h1h",
		"1D2h3m4s extra",
		"1 D",
		"999999999s",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.ErrorIs(t, err, ErrInvalidTimeExpression)
		})
	}
}

func TestResolveWhenCompleteFieldsIgnoreNow(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.Local),
		time.Date(2024, 6, 15, 8, 0, 0, 0, time.Local),
		time.Date(2030, 2, 1, 0, 0, 0, 0, time.Local),
	} {
		got, err := Resolve("2025Y10M12D15h22m30s", "", now)
		require.NoError(t, err)
		assert.Equal(t, dueat.DueAt(20251012152230), got)
	}
}

func TestResolveWhenOverlaysPresentFields(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.Local)

	got, err := Resolve("13h2m", "", now)
	require.NoError(t, err)
	assert.Equal(t, "20240615130200", got.String())
}

func TestResolveWhenKeepsSecondsFromNow(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 41, 0, time.Local)

	got, err := Resolve("9h", "", now)
	require.NoError(t, err)
	assert.Equal(t, "20240615090041", got.String())
}

func TestResolveWhenInvalidCalendar(t *testing.T) {
	now := time.Date(2015, 10, 12, 10, 0, 0, 0, time.Local)

	for _, when := range []string{
		"2M30D",
		"24h",
		"60m",
		"60s",
		"32D",
		"13M",
		"2015Y2M29D",
	} {
		t.Run(when, func(t *testing.T) {
			_, err := Resolve(when, "", now)
			require.ErrorIs(t, err, ErrInvalidDateTime)
		})
	}
}

func TestResolveAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	got, err := Resolve("", "12h3m5s", now)
	require.NoError(t, err)
	assert.Equal(t, dueat.DueAt(20240101120305), got)
}

func TestResolveAfterCarriesAcrossCalendar(t *testing.T) {
	now := time.Date(2024, 2, 28, 23, 0, 0, 0, time.Local)

	got, err := Resolve("", "1D90m", now)
	require.NoError(t, err)
	assert.Equal(t, "20240301003000", got.String())
}

func TestResolveAfterLargeOffsets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	tests := []struct {
		after string
		want  time.Time
	}{
		{"2000000h", now.Add(2000000 * time.Hour)},
		{"99999999m", now.Add(99999999 * time.Minute)},
		{"99999999s", now.Add(99999999 * time.Second)},
		{"2000000D", now.AddDate(0, 0, 2000000)},
	}
	for _, tt := range tests {
		t.Run(tt.after, func(t *testing.T) {
			got, err := Resolve("", tt.after, now)
			require.NoError(t, err)
			assert.Len(t, got.String(), 14)
			assert.Equal(t, dueat.FromTime(tt.want), got)
			assert.Greater(t, int64(got), int64(dueat.FromTime(now)))
		})
	}
}

func TestResolveAfterPastYear9999(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	for _, after := range []string{
		"3000000D",
		"99999999D",
		"99999999h",
		"99999999D99999999h99999999m99999999s",
	} {
		t.Run(after, func(t *testing.T) {
			_, err := Resolve("", after, now)
			require.ErrorIs(t, err, ErrInvalidDateTime)
		})
	}
}

func TestResolveAfterIgnoresYearAndMonth(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	got, err := Resolve("", "1Y2M5s", now)
	require.NoError(t, err)
	assert.Equal(t, "20240101000005", got.String())
}

func TestResolveWhenTakesPrecedence(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	got, err := Resolve("12h3m45s", "12h3m5s", now)
	require.NoError(t, err)
	assert.Equal(t, "120345", got.String()[8:])

	// after is never parsed when when is present
	_, err = Resolve("12h", "garbage", now)
	require.NoError(t, err)
}

func TestResolveNeitherIsNow(t *testing.T) {
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.Local)

	got, err := Resolve("", "", now)
	require.NoError(t, err)
	assert.Equal(t, dueat.FromTime(now), got)
}

func TestResolveMalformedSurfaces(t *testing.T) {
	now := time.Now()

	_, err := Resolve("tomorrow", "", now)
	require.ErrorIs(t, err, ErrInvalidTimeExpression)

	_, err = Resolve("", "soon", now)
	require.ErrorIs(t, err, ErrInvalidTimeExpression)
}

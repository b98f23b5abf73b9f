package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartialDate(t *testing.T) {
	tests := []struct {
		input       string
		granularity Granularity
		point       time.Time
		wantErr     bool
	}{
		{input: "2021", granularity: GranularityYear, point: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2020-05", granularity: GranularityMonth, point: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2020-05-17", granularity: GranularityDay, point: time.Date(2020, 5, 17, 0, 0, 0, 0, time.UTC)},
		{input: " 2020-05-17 ", wantErr: true},
		{input: "2021\n", wantErr: true},
		{input: "2020-13", wantErr: true},
		{input: "2021-02-30", wantErr: true},
		{input: "21", wantErr: true},
		{input: "2020/05/01", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParsePartialDate(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.granularity, d.Granularity)
			assert.True(t, tt.point.Equal(d.Point()))
		})
	}
}

func TestPartialDate_StringRoundTrip(t *testing.T) {
	for _, s := range []string{"0987", "2021", "2020-05", "2020-05-07"} {
		d, err := ParsePartialDate(s)
		require.NoError(t, err)
		assert.Equal(t, s, d.String())
	}
}

func TestPartialDate_Compare(t *testing.T) {
	year, _ := ParsePartialDate("2021")
	jan, _ := ParsePartialDate("2021-01")
	firstJan, _ := ParsePartialDate("2021-01-01")
	may, _ := ParsePartialDate("2020-05")

	assert.Equal(t, 0, year.Compare(jan))
	assert.Equal(t, 0, jan.Compare(firstJan))
	assert.Equal(t, -1, may.Compare(year))
	assert.Equal(t, 1, year.Compare(may))
}

func TestDateRange_Contains(t *testing.T) {
	mustParse := func(s string) *PartialDate {
		d, err := ParsePartialDate(s)
		require.NoError(t, err)
		return &d
	}

	tests := []struct {
		name  string
		r     DateRange
		date  string
		want  bool
		bound bool
	}{
		{name: "open range", r: DateRange{}, date: "1900", want: true},
		{name: "after start", r: DateRange{Start: mustParse("2020-06")}, date: "2021", want: true, bound: true},
		{name: "before start", r: DateRange{Start: mustParse("2020-06")}, date: "2020-05", want: false, bound: true},
		{name: "year is its first day", r: DateRange{Start: mustParse("2020-06")}, date: "2020", want: false, bound: true},
		{name: "inclusive end", r: DateRange{End: mustParse("2021")}, date: "2021-01-01", want: true, bound: true},
		{name: "past end", r: DateRange{End: mustParse("2021")}, date: "2021-01-02", want: false, bound: true},
		{name: "inside both", r: DateRange{Start: mustParse("2019"), End: mustParse("2021")}, date: "2020-05", want: true, bound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bound, tt.r.Bounded())
			assert.Equal(t, tt.want, tt.r.Contains(*mustParse(tt.date)))
		})
	}
}

package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/prayerboard/internal/schedule"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want schedule.RawGrid
	}{
		{
			name: "ragged rows",
			in:   "a,b,c\nd\ne,f",
			want: schedule.RawGrid{{"a", "b", "c"}, {"d"}, {"e", "f"}},
		},
		{
			name: "blank line kept",
			in:   "a\n\nb",
			want: schedule.RawGrid{{"a"}, {""}, {"b"}},
		},
		{
			name: "several blank lines",
			in:   "a\n\n\n\nb",
			want: schedule.RawGrid{{"a"}, {""}, {""}, {""}, {"b"}},
		},
		{
			name: "leading blank line",
			in:   "\na",
			want: schedule.RawGrid{{""}, {"a"}},
		},
		{
			name: "trailing newline",
			in:   "a\nb\n",
			want: schedule.RawGrid{{"a"}, {"b"}, {""}},
		},
		{
			name: "trailing blank line",
			in:   "a\n\n",
			want: schedule.RawGrid{{"a"}, {""}, {""}},
		},
		{
			name: "only line breaks",
			in:   "\n\n",
			want: schedule.RawGrid{{""}, {""}, {""}},
		},
		{
			name: "crlf",
			in:   "a,b\r\n\r\nc\r\n",
			want: schedule.RawGrid{{"a", "b"}, {""}, {"c"}, {""}},
		},
		{
			name: "quoted newline does not shift lines",
			in:   "\"x\ny\",z\n\nw",
			want: schedule.RawGrid{{"x\ny", "z"}, {""}, {"w"}},
		},
		{
			name: "quoted comma",
			in:   "\"Al-Noor, Downtown\",5:00\n",
			want: schedule.RawGrid{{"Al-Noor, Downtown", "5:00"}, {""}},
		},
		{
			name: "empty input",
			in:   "",
			want: schedule.RawGrid{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_Malformed(t *testing.T) {
	_, err := Tokenize([]byte("a,\"unterminated\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenization), "got %v", err)
}

func TestTokenize_HeaderOnlySheetParsesEmpty(t *testing.T) {
	grid, err := Tokenize([]byte("Last updated 1 Jan\n,Fajr - فجر,Zuhar - ظہر\n"))
	require.NoError(t, err)
	require.Len(t, grid, 3)

	res, err := schedule.Parse(grid)
	require.NoError(t, err)
	assert.Empty(t, res.Mosques)
	assert.Empty(t, res.FooterNotes)
	require.NotNil(t, res.LastUpdated)
	assert.Equal(t, "Last updated 1 Jan", *res.LastUpdated)
}

func TestTokenize_FeedsParser(t *testing.T) {
	in := "Last updated 1 Jan\n" +
		",Fajr - فجر,Zuhar - ظہر,Asr - عصر,Isha - عشاء,Juma - جمعہ\n" +
		"\n" +
		"North,,,,,,\n" +
		"Masjid A,5:30,1:30,4:45,8:00,1:15,مسجد\n" +
		"\n" +
		"Note:,Timings may vary\n"

	grid, err := Tokenize([]byte(in))
	require.NoError(t, err)

	res, err := schedule.Parse(grid)
	require.NoError(t, err)

	require.Len(t, res.Mosques, 1)
	assert.Equal(t, "North", res.Mosques[0].Area)
	assert.Equal(t, "Masjid A", res.Mosques[0].NameEn)
	assert.Equal(t, []string{"Note: Timings may vary"}, res.FooterNotes)
}

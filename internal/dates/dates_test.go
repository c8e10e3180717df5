package dates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name          string
		first, second string
		want          int
	}{
		{name: "positive difference", first: "01/01/2024", second: "15/01/2024", want: 14},
		{name: "negative difference", first: "15/01/2024", second: "01/01/2024", want: -14},
		{name: "same date", first: "01/01/2024", second: "01/01/2024", want: 0},
		{name: "across year", first: "31/12/2023", second: "01/01/2024", want: 1},
		{name: "leap year", first: "01/01/2024", second: "01/01/2025", want: 366},
		{name: "non leap year", first: "01/01/2023", second: "01/01/2024", want: 365},
		{name: "leap day", first: "28/02/2024", second: "01/03/2024", want: 2},
		{name: "before epoch", first: "01/01/1900", second: "01/01/1970", want: 25567},
		{name: "long span", first: "01/01/0001", second: "31/12/9999", want: 3652058},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysBetween(tt.first, tt.second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysBetween_Validation(t *testing.T) {
	tests := []struct {
		name          string
		first, second string
	}{
		{name: "first absent", first: "", second: "01/01/2024"},
		{name: "second absent", first: "01/01/2024", second: ""},
		{name: "wrong separator", first: "01-01-2024", second: "01/01/2024"},
		{name: "iso order", first: "2024/01/01", second: "01/01/2024"},
		{name: "day out of range", first: "32/01/2024", second: "01/01/2024"},
		{name: "february 30", first: "30/02/2024", second: "01/01/2024"},
		{name: "single digit day", first: "1/01/2024", second: "01/01/2024"},
		{name: "garbage", first: "yesterday", second: "01/01/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DaysBetween(tt.first, tt.second)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "expected validation error, got %v", err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestDaysBetween_MessageNamesArgument(t *testing.T) {
	_, err := DaysBetween("", "01/01/2024")
	require.Error(t, err)
	assert.Equal(t, "first date must not be empty", err.Error())

	_, err = DaysBetween("01/01/2024", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `second date "bad"`)
	assert.Contains(t, err.Error(), DefaultPattern)
}

func TestDaysBetweenPattern(t *testing.T) {
	got, err := DaysBetweenPattern("2024-01-01", "2024-03-01", "yyyy-MM-dd")
	require.NoError(t, err)
	assert.Equal(t, 60, got)

	got, err = DaysBetweenPattern("1.2.2024", "3.2.2024", "d.M.yyyy")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestDaysBetweenPattern_BadPattern(t *testing.T) {
	for _, pattern := range []string{"", "dd/MM/yy", "dd/MMM/yyyy", "HH:mm", "dd/MM/2024"} {
		_, err := DaysBetweenPattern("01/01/2024", "02/01/2024", pattern)
		require.Error(t, err, "pattern %q", pattern)
		assert.False(t, errors.Is(err, ErrValidation), "pattern %q should not be an input validation error", pattern)
	}
}

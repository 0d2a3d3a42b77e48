package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "plain date", input: "2024-01-15", want: NewDate(2024, time.January, 15)},
		{name: "surrounding spaces", input: " 2024-02-29 ", want: NewDate(2024, time.February, 29)},
		{name: "timestamp rejected", input: "2024-01-15T00:00:00Z", wantErr: true},
		{name: "short month rejected", input: "2024-1-15", wantErr: true},
		{name: "impossible day", input: "2023-02-29", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDate(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
		})
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Day  Date  `json:"day"`
		Opt  Date  `json:"opt"`
		Ptr  *Date `json:"ptr,omitempty"`
		Skip *Date `json:"skip,omitempty"`
	}
	d := MustParseDate("2024-03-31")
	b, err := json.Marshal(payload{Day: d, Ptr: &d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-03-31","opt":null,"ptr":"2024-03-31"}`, string(b))

	var back payload
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back.Day))
	assert.True(t, back.Opt.IsZero())
	assert.Nil(t, back.Skip)

	assert.Error(t, json.Unmarshal([]byte(`{"day":"31/03/2024"}`), &back))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-05-06"))
	assert.Equal(t, "2024-05-06", d.String())

	require.NoError(t, d.Scan([]byte("2024-05-07T00:00:00Z")))
	assert.Equal(t, "2024-05-07", d.String())

	loc := time.FixedZone("UTC+8", 8*3600)
	require.NoError(t, d.Scan(time.Date(2024, 5, 8, 0, 0, 0, 0, loc)))
	assert.Equal(t, "2024-05-08", d.String(), "wall-clock day must survive a non-UTC driver zone")

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	v, err := MustParseDate("2024-05-09").Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-09", v)
}

func TestReminderDate(t *testing.T) {
	base := MustParseDate("2024-01-15")
	testCases := []struct {
		freq Frequency
		want string
	}{
		{OneTime, "2024-01-15"},
		{Monthly, "2024-02-15"},
		{Quarterly, "2024-04-15"},
		{BiYearly, "2024-07-15"},
		{Yearly, "2025-01-15"},
		{Frequency("weekly"), "2024-01-15"},
	}
	for _, tc := range testCases {
		t.Run(string(tc.freq), func(t *testing.T) {
			got := ReminderDate(base, tc.freq)
			assert.Equal(t, tc.want, got.String())
			assert.False(t, got.Before(base), "reminder must never precede the task date")
		})
	}
}

func TestReminderDate_MonthEndRollsOver(t *testing.T) {
	assert.Equal(t, "2024-03-02", ReminderDate(MustParseDate("2024-01-31"), Monthly).String())
	assert.Equal(t, "2025-03-01", ReminderDate(MustParseDate("2024-02-29"), Yearly).String())
}

func TestWarrantyExpiry(t *testing.T) {
	assert.Equal(t, "2026-01-15", WarrantyExpiry(MustParseDate("2024-01-15"), 24).String())
	assert.Equal(t, "2024-01-15", WarrantyExpiry(MustParseDate("2024-01-15"), 0).String())

	// expiry is exactly months calendar months after purchase, and expired on its own day
	start := MustParseDate("2023-06-10")
	for months := 1; months <= 60; months++ {
		exp := WarrantyExpiry(start, months)
		y1, m1, _ := start.Time().Date()
		y2, m2, d2 := exp.Time().Date()
		assert.Equal(t, (y1*12+int(m1))+months, y2*12+int(m2), "months=%d", months)
		assert.Equal(t, 10, d2)
		assert.Equal(t, StatusExpired, Warranty(exp, exp))
	}
}

func TestWarranty(t *testing.T) {
	now := MustParseDate("2024-06-01")
	testCases := []struct {
		name   string
		expiry Date
		want   WarrantyStatus
	}{
		{"yesterday", now.AddDays(-1), StatusExpired},
		{"today", now, StatusExpired},
		{"tomorrow", now.AddDays(1), StatusExpiringSoon},
		{"exactly thirty days", now.AddDays(30), StatusExpiringSoon},
		{"thirty one days", now.AddDays(31), StatusActive},
		{"next year", now.AddYears(1), StatusActive},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Warranty(tc.expiry, now))
		})
	}

	for offset := -40; offset <= 40; offset++ {
		d := now.AddDays(offset)
		got := Warranty(d, now)
		assert.Equal(t, d.After(now.AddDays(30)), got == StatusActive, "offset %d", offset)
		assert.Equal(t, d.After(now) && !d.After(now.AddDays(30)), got == StatusExpiringSoon, "offset %d", offset)
		assert.Equal(t, !d.After(now), got == StatusExpired, "offset %d", offset)
	}
}

func TestIsUpcoming(t *testing.T) {
	now := MustParseDate("2024-06-01")
	assert.True(t, IsUpcoming(now, now, 14))
	assert.True(t, IsUpcoming(now.AddDays(14), now, 14))
	assert.False(t, IsUpcoming(now.AddDays(15), now, 14))
	assert.False(t, IsUpcoming(now.AddDays(-1), now, 14))
}

func TestFrequency_Valid(t *testing.T) {
	for _, f := range Frequencies {
		assert.True(t, f.Valid())
	}
	assert.False(t, Frequency("daily").Valid())
}

package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_localFields(t *testing.T) {
	lima := time.FixedZone("Lima", -5*60*60)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "zero padded", t: time.Date(2024, time.March, 5, 10, 0, 0, 0, lima), want: "2024-03-05"},
		{name: "late evening not shifted to UTC", t: time.Date(2024, time.March, 4, 23, 30, 0, 0, lima), want: "2024-03-04"},
		{name: "year end", t: time.Date(2023, time.December, 31, 23, 59, 0, 0, lima), want: "2023-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateOf(tt.t).String())
			assert.Equal(t, tt.want, FormatDate(tt.t))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		want    Date
		wantErr bool
	}{
		{name: "valid", s: "2024-03-05", want: Date{Year: 2024, Month: time.March, Day: 5}},
		{name: "trimmed", s: " 2024-03-05 ", want: Date{Year: 2024, Month: time.March, Day: 5}},
		{name: "not padded", s: "2024-3-5", wantErr: true},
		{name: "invalid day", s: "2024-02-30", wantErr: true},
		{name: "empty", s: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_arithmetic(t *testing.T) {
	d := Date{Year: 2024, Month: time.March, Day: 31}
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 17}, d.AddDays(-14))
	assert.Equal(t, Date{Year: 2024, Month: time.April, Day: 1}, d.AddDays(1))
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, Date{Year: 2024, Month: time.March, Day: 29}.AddMonths(-1))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.False(t, d.Before(d))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date  `json:"date"`
		Last *Date `json:"last"`
	}
	data, err := json.Marshal(payload{Date: Date{Year: 2024, Month: time.March, Day: 5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date": "2024-03-05", "last": null}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date": "2024-12-01", "last": "2024-11-30"}`), &p))
	assert.Equal(t, "2024-12-01", p.Date.String())
	assert.Equal(t, "2024-11-30", p.Last.String())

	assert.Error(t, json.Unmarshal([]byte(`{"date": 20241201}`), &p))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-05", d.String())
	require.NoError(t, d.Scan([]byte("2024-03-06")))
	assert.Equal(t, "2024-03-06", d.String())
	assert.Error(t, d.Scan(42))
}

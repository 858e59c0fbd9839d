package youtubeapi

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "PT45S", want: 45 * time.Second},
		{in: "PT2M45S", want: 2*time.Minute + 45*time.Second},
		{in: "PT1H2M3S", want: time.Hour + 2*time.Minute + 3*time.Second},
		{in: "PT10M", want: 10 * time.Minute},
		{in: "PT1H", want: time.Hour},
		{in: "P1DT2H", want: 26 * time.Hour},
		{in: "P1W", want: 7 * 24 * time.Hour},
		{in: "PT0S", want: 0},
		{in: "", wantErr: true},
		{in: "P", wantErr: true},
		{in: "1H2M", wantErr: true},
		{in: "PT1X", wantErr: true},
		{in: "PTS", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseISODuration(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseISODuration(%q) err = %v, wantErr = %v", tc.in, err, tc.wantErr)
		}
		if err == nil && got != tc.want {
			t.Fatalf("parseISODuration(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

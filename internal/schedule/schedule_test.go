package schedule

import (
	"testing"
	"time"
)

func TestParseTimes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    []TimeOfDay
		wantErr bool
	}{
		{
			name: "two slots sorted",
			in:   "18:00,10:00",
			want: []TimeOfDay{{Hour: 10}, {Hour: 18}},
		},
		{
			name: "whitespace tolerated",
			in:   " 9:30 , 21:15 ",
			want: []TimeOfDay{{Hour: 9, Minute: 30}, {Hour: 21, Minute: 15}},
		},
		{
			name:    "invalid entry dropped",
			in:      "10:00,25:00",
			want:    []TimeOfDay{{Hour: 10}},
			wantErr: true,
		},
		{
			name:    "all invalid falls back to defaults",
			in:      "banana",
			want:    DefaultTimes,
			wantErr: true,
		},
		{
			name:    "empty falls back to defaults",
			in:      "",
			want:    DefaultTimes,
			wantErr: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimes(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tc.wantErr)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestNext(t *testing.T) {
	t.Parallel()

	times := []TimeOfDay{{Hour: 10}, {Hour: 18}}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before first slot",
			now:  day.Add(8 * time.Hour),
			want: day.Add(10 * time.Hour),
		},
		{
			name: "between slots",
			now:  day.Add(12 * time.Hour),
			want: day.Add(18 * time.Hour),
		},
		{
			name: "after last slot rolls to tomorrow",
			now:  day.Add(20 * time.Hour),
			want: day.AddDate(0, 0, 1).Add(10 * time.Hour),
		},
		{
			name: "exactly on a slot picks the next one",
			now:  day.Add(10 * time.Hour),
			want: day.Add(18 * time.Hour),
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Next(tc.now, times); !got.Equal(tc.want) {
				t.Fatalf("Next(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

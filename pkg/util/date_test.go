package util

import (
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	got, ok := ParseTime("2024-03-01T10:00:00+02:00")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParseTimeUnix(t *testing.T) {
	got, ok := ParseTime("1700000000")
	if !ok || got.Unix() != 1700000000 {
		t.Fatalf("unix seconds: got %v ok=%v", got, ok)
	}
	got, ok = ParseTime("1700000000123")
	if !ok || got.UnixMilli() != 1700000000123 {
		t.Fatalf("unix millis: got %v ok=%v", got, ok)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseTimeDefault("not-a-time", def); !got.Equal(def) {
		t.Fatalf("expected default, got %v", got)
	}
	if got := ParseTimeDefault("2024-05-06", def); got.Day() != 6 {
		t.Fatalf("date only layout: got %v", got)
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" a, ,b ,c,")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("got %v", got)
	}
}

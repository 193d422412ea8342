package timefmt

import (
	"testing"
	"time"
)

func TestFormats(t *testing.T) {
	ts := time.Date(2024, 3, 9, 9, 5, 7, 0, time.Local).Unix()

	if got := HM(ts); got != "09:05" {
		t.Fatalf("HM = %q, want 09:05", got)
	}
	if got := HMS(ts); got != "09:05:07" {
		t.Fatalf("HMS = %q, want 09:05:07", got)
	}
	if got := Clock(ts); got != "9:5:7" {
		t.Fatalf("Clock = %q, want 9:5:7", got)
	}
}

func TestFormats_Afternoon(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 59, 30, 0, time.Local).Unix()

	if got := HM(ts); got != "23:59" {
		t.Fatalf("HM = %q, want 23:59", got)
	}
	if got := Clock(ts); got != "23:59:30" {
		t.Fatalf("Clock = %q, want 23:59:30", got)
	}
}

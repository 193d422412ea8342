// Package timefmt formats Unix-second timestamps for chart axes and labels.
package timefmt

import (
	"fmt"
	"time"
)

// HM formats ts as zero-padded "15:04" in local time.
func HM(ts int64) string {
	return time.Unix(ts, 0).Format("15:04")
}

// HMS formats ts as zero-padded "15:04:05" in local time.
func HMS(ts int64) string {
	return time.Unix(ts, 0).Format("15:04:05")
}

// Clock formats ts as "H:M:S" without padding, e.g. "9:5:7".
func Clock(ts int64) string {
	t := time.Unix(ts, 0)
	return fmt.Sprintf("%d:%d:%d", t.Hour(), t.Minute(), t.Second())
}

// Package logtail reads the tail of the mmwdash log file for the logs view.
//
// # Reading
//
// Read returns the last maxLines lines of a file with a ring buffer, so memory
// stays O(maxLines) no matter how large the file grows:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line: store at idx, advance idx modulo maxLines
//	3. Return the buffer starting at idx (the oldest kept line)
//
// A missing file is not an error; it reads as empty.
//
// # Parsing
//
// The dashboard logs JSON lines through zerolog. Parse decodes one line into
// an Entry using zerolog's field names, pulls out component and request_id,
// and keeps every other field as text in key order. Lines that are not JSON
// (a panic trace, say) come back with only Raw and Message set.
//
//	entries, err := logtail.Tail(cfg.LogFile, 500)
//	for _, e := range entries {
//		fmt.Println(e.Format())
//	}
package logtail

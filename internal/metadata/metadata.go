package metadata

import (
	"strings"
)

// Record holds the artist/title pair extracted from the now-playing file.
// Fields left empty when the file does not carry the corresponding line.
type Record struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Complete reports whether both fields are present.
func (r Record) Complete() bool {
	return r.Artist != "" && r.Title != ""
}

// Parse extracts a Record from the full content of the now-playing file.
//
// The file format is one field per line:
//
//	Artist: <text>
//	Title: <text>
//
// Prefix matching is case-insensitive, surrounding whitespace is trimmed,
// line order is irrelevant and any other line is ignored. If a field appears
// more than once the last occurrence wins.
func Parse(content string) Record {
	var record Record

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if value, ok := fieldValue(line, "artist:"); ok {
			record.Artist = value
		} else if value, ok := fieldValue(line, "title:"); ok {
			record.Title = value
		}
	}

	return record
}

// fieldValue matches a case-insensitive field prefix and returns the trimmed
// text after the colon.
func fieldValue(line, prefix string) (string, bool) {
	if len(line) < len(prefix) {
		return "", false
	}
	if !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

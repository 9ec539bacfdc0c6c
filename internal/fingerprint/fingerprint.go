// Package fingerprint derives the stable dedup keys the pipeline is built on.
// Keys must be byte-identical across runs and machines for semantically equal
// inputs, so every identity field is normalized before hashing.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"adofill/activity"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize strips diacritics, lowercases, and collapses internal whitespace.
func Normalize(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Transform only fails on malformed UTF-8; hash the raw text instead
		// of dropping the activity.
		stripped = text
	}
	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}

// Activity returns the hex SHA-256 dedup key for one activity occurrence.
// Timestamp-of-day, description, and tags are deliberately excluded: the same
// source+title+date is the same real-world occurrence even when upstream
// metadata drifts between queries.
func Activity(source activity.SourceType, title string, day time.Time) string {
	content := fmt.Sprintf("%s:%s:%s", source, Normalize(title), day.Format("20060102"))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Group returns the hex SHA-256 key for a monthly parent grouping. The
// qualifier, when configured, is part of the identity: the same month under
// two qualifiers is two distinct parents.
func Group(year int, month time.Month, qualifier string) string {
	content := fmt.Sprintf("parent:%d%02d", year, int(month))
	if normalized := Normalize(qualifier); normalized != "" {
		content += ":" + normalized
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

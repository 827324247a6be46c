// Package export renders a user's transactions as a downloadable CSV file.
package export

import (
	"strconv"
	"strings"
	"time"

	"fintrack/internal/store"
)

// header mirrors the transaction fields in wire order.
var header = []string{"id", "type", "date", "category", "desc", "amount", "timestamp"}

// CSV serializes the snapshot in store key order. Every field is
// double-quoted, with embedded quotes doubled; encoding/csv only quotes
// fields that need it, so the quoting is done by hand to keep the exported
// format byte-stable.
func CSV(snap store.Snapshot) string {
	var b strings.Builder
	writeRow(&b, header)
	for _, key := range snap.Keys {
		tx := snap.Records[key]
		writeRow(&b, []string{
			key,
			string(tx.Type),
			tx.Date,
			tx.Category,
			tx.Desc,
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
			strconv.FormatInt(tx.Timestamp, 10),
		})
	}
	return b.String()
}

// Filename returns the download name for an export generated at now,
// e.g. finance-export-2024-03-20.csv.
func Filename(now time.Time) string {
	return "finance-export-" + now.Format("2006-01-02") + ".csv"
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

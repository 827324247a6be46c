// Package sheets defines the outbound port for the spreadsheet backup.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// BackupWriter mirrors transaction changes into an external spreadsheet.
type BackupWriter interface {
	// AppendTransaction adds one transaction row and returns a reference to it.
	AppendTransaction(ctx context.Context, uid, id string, tx core.Transaction) (rowRef string, err error)

	// MarkDeleted records that a transaction was removed.
	MarkDeleted(ctx context.Context, uid, id string) error
}

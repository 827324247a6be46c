// Package memory is an in-process backup writer used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

type Row struct {
	UID string
	ID  string
	Tx  core.Transaction
}

type Writer struct {
	mu      sync.Mutex
	rows    []Row
	deleted []string
}

var _ sheets.BackupWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

func (w *Writer) AppendTransaction(_ context.Context, uid, id string, tx core.Transaction) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, Row{UID: uid, ID: id, Tx: tx})
	return fmt.Sprintf("row-%d", len(w.rows)), nil
}

func (w *Writer) MarkDeleted(_ context.Context, uid, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deleted = append(w.deleted, uid+"/"+id)
	return nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Row(nil), w.rows...)
}

// Deleted returns uid/id pairs marked as deleted.
func (w *Writer) Deleted() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.deleted...)
}

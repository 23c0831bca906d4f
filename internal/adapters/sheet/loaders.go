package sheet

import (
	"context"
	"fmt"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/ports"
)

const (
	DefaultGroupColumn = "Assessor"
	DefaultIDColumn    = "codigo"
	DefaultPhoneColumn = "numero"
)

type LedgerLoader struct {
	groupColumn string
	sheet       string
}

var _ ports.LedgerLoader = (*LedgerLoader)(nil)

func NewLedgerLoader(groupColumn string, sheet string) *LedgerLoader {
	if groupColumn == "" {
		groupColumn = DefaultGroupColumn
	}
	return &LedgerLoader{groupColumn: groupColumn, sheet: sheet}
}

func (l *LedgerLoader) LoadLedger(ctx context.Context, path string) (domain.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ledger{}, err
	}

	t, err := readTable(path, l.sheet)
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}

	indexes, err := t.requireColumns("ledger", l.groupColumn)
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	groupIndex := indexes[0]

	records := make([]domain.BalanceRecord, 0, len(t.rows))
	for _, row := range t.rows {
		records = append(records, domain.BalanceRecord{
			Agent: domain.NormalizeAgentID(row[groupIndex]),
			Cells: row,
		})
	}

	return domain.Ledger{
		Columns:     t.header,
		GroupColumn: l.groupColumn,
		Groups:      domain.GroupRecords(t.header, records),
	}, nil
}

type DirectoryLoader struct {
	idColumn    string
	phoneColumn string
	sheet       string
}

var _ ports.DirectoryLoader = (*DirectoryLoader)(nil)

func NewDirectoryLoader(idColumn string, phoneColumn string, sheet string) *DirectoryLoader {
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}
	if phoneColumn == "" {
		phoneColumn = DefaultPhoneColumn
	}
	return &DirectoryLoader{idColumn: idColumn, phoneColumn: phoneColumn, sheet: sheet}
}

func (l *DirectoryLoader) LoadDirectory(ctx context.Context, path string) (domain.Directory, error) {
	if err := ctx.Err(); err != nil {
		return domain.Directory{}, err
	}

	t, err := readTable(path, l.sheet)
	if err != nil {
		return domain.Directory{}, fmt.Errorf("load directory: %w", err)
	}

	indexes, err := t.requireColumns("directory", l.idColumn, l.phoneColumn)
	if err != nil {
		return domain.Directory{}, fmt.Errorf("load directory: %w", err)
	}

	entries := make([]domain.DirectoryEntry, 0, len(t.rows))
	for _, row := range t.rows {
		entries = append(entries, domain.DirectoryEntry{Agent: row[indexes[0]], Phone: row[indexes[1]]})
	}

	return domain.NewDirectory(entries), nil
}

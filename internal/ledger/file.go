// Package ledger provides transaction-ledger backends: JSON files on
// disk and PostgreSQL.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

// portfolioFile is the on-disk portfolio document: one JSON file per
// portfolio, named <name>.json under the portfolios directory.
type portfolioFile struct {
	Name         string                  `json:"name"`
	CreatedDate  string                  `json:"created_date,omitempty"`
	Transactions []contracts.Transaction `json:"transactions"`
}

// FileStore reads portfolio ledgers from JSON files. The file's mtime
// is the portfolio's last-modified timestamp.
type FileStore struct {
	dir string
	log *logger.Logger
}

// NewFileStore creates a file-backed ledger rooted at dir.
func NewFileStore(dir string, log *logger.Logger) *FileStore {
	return &FileStore{
		dir: dir,
		log: log.WithComponent("ledger_file"),
	}
}

func (s *FileStore) path(portfolio string) string {
	return filepath.Join(s.dir, portfolio+".json")
}

// Transactions returns the portfolio's entries in file order.
func (s *FileStore) Transactions(_ context.Context, portfolio string) ([]contracts.Transaction, error) {
	data, err := os.ReadFile(s.path(portfolio))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("portfolio %q not found", portfolio)
		}
		return nil, fmt.Errorf("read portfolio %q: %w", portfolio, err)
	}

	var pf portfolioFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse portfolio %q: %w", portfolio, err)
	}
	return pf.Transactions, nil
}

// LastModified reports the ledger file's mtime.
func (s *FileStore) LastModified(_ context.Context, portfolio string) (time.Time, error) {
	info, err := os.Stat(s.path(portfolio))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, fmt.Errorf("portfolio %q not found", portfolio)
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// List returns every portfolio name (file basename without .json),
// sorted.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list portfolios: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Save writes a portfolio document atomically. Used by tests and by
// tooling that seeds ledgers; the analysis core itself only reads.
func (s *FileStore) Save(_ context.Context, portfolio string, txs []contracts.Transaction) error {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create portfolios dir: %w", err)
	}

	data, err := json.MarshalIndent(portfolioFile{
		Name:         portfolio,
		Transactions: txs,
	}, "", "  ")
	if err != nil {
		return err
	}

	path := s.path(portfolio)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write portfolio %q: %w", portfolio, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename portfolio %q: %w", portfolio, err)
	}
	return nil
}

var _ contracts.TransactionLedger = (*FileStore)(nil)

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/logger"
)

func day(t *testing.T, s string) contracts.Day {
	t.Helper()
	d, err := contracts.ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	store := NewFileStore(t.TempDir(), logger.Nop())
	ctx := context.Background()

	txs := []contracts.Transaction{
		{Ticker: "AAPL", Type: contracts.TxBuy, Shares: 10, Price: 150, Date: day(t, "2024-01-02"), Sequence: 1},
		{Ticker: contracts.CashTicker, Type: contracts.TxBuy, Shares: 500, Price: 1, Date: day(t, "2024-01-02"), Sequence: 2},
	}
	require.NoError(t, store.Save(ctx, "growth", txs))

	loaded, err := store.Transactions(ctx, "growth")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "AAPL", loaded[0].Ticker)
	assert.Equal(t, contracts.TxBuy, loaded[0].Type)
	assert.Equal(t, day(t, "2024-01-02"), loaded[0].Date)
	assert.Equal(t, 1, loaded[0].Sequence)
}

func TestFileStoreLastModified(t *testing.T) {
	store := NewFileStore(t.TempDir(), logger.Nop())
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.Save(ctx, "growth", []contracts.Transaction{
		{Ticker: "AAPL", Type: contracts.TxBuy, Shares: 1, Price: 100, Date: day(t, "2024-01-02")},
	}))

	mtime, err := store.LastModified(ctx, "growth")
	require.NoError(t, err)
	assert.True(t, mtime.After(before), "mtime should be recent")
}

func TestFileStoreMissingPortfolio(t *testing.T) {
	store := NewFileStore(t.TempDir(), logger.Nop())
	ctx := context.Background()

	_, err := store.Transactions(ctx, "ghost")
	assert.ErrorContains(t, err, "not found")

	_, err = store.LastModified(ctx, "ghost")
	assert.ErrorContains(t, err, "not found")
}

func TestFileStoreList(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, logger.Nop())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "zeta", nil))
	require.NoError(t, store.Save(ctx, "alpha", nil))
	// stray non-JSON file is ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestFileStoreListMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope"), logger.Nop())
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, logger.Nop())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err := store.Transactions(context.Background(), "bad")
	assert.ErrorContains(t, err, "parse portfolio")
}

func TestFileStoreSaveRejectsInvalid(t *testing.T) {
	store := NewFileStore(t.TempDir(), logger.Nop())
	err := store.Save(context.Background(), "growth", []contracts.Transaction{
		{Ticker: "AAPL", Type: "short", Shares: 1, Price: 100, Date: day(t, "2024-01-02")},
	})
	assert.Error(t, err)
}

package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/graphmend/pkg/types"
)

// Store records the terminal state of executed merge operations in a local
// Badger database so an interrupted run can resume without re-issuing
// merges. Keys combine the plan digest with the operation index, so editing
// a plan file invalidates its old checkpoints. The store is purely local and
// safe to delete.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) a checkpoint store at dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store at %s: %w", dir, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PlanDigest fingerprints a plan's content. Any change to an operation
// produces a different digest. RelationshipCounts is hashed in sorted form
// so map iteration order cannot change the digest between runs.
func PlanDigest(ops []types.MergeOperation) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i := range ops {
		op := ops[i]
		counts := op.RelationshipCounts
		op.RelationshipCounts = nil
		_ = enc.Encode(op)
		_ = enc.Encode(sortedCounts(counts))
	}
	return hex.EncodeToString(h.Sum(nil))
}

type countEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func sortedCounts(m map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(m))
	for name, count := range m {
		entries = append(entries, countEntry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// MarkApplied records that the operation at index reached the given
// terminal status.
func (s *Store) MarkApplied(digest string, index int, status types.OperationStatus) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(opKey(digest, index), []byte(status))
	})
	if err != nil {
		return fmt.Errorf("failed to checkpoint operation %d: %w", index, err)
	}
	return nil
}

// Applied returns the recorded status of an operation, or false when it has
// no checkpoint.
func (s *Store) Applied(digest string, index int) (types.OperationStatus, bool, error) {
	var status types.OperationStatus
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(opKey(digest, index))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			status = types.OperationStatus(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read checkpoint for operation %d: %w", index, err)
	}
	return status, true, nil
}

// AppliedCount returns how many operations of a plan have checkpoints.
func (s *Store) AppliedCount(digest string) (int, error) {
	count := 0
	prefix := []byte(digest + "/")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan checkpoints: %w", err)
	}
	return count, nil
}

// Clear removes every checkpoint recorded for a plan.
func (s *Store) Clear(digest string) error {
	prefix := []byte(digest + "/")
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

func opKey(digest string, index int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", digest, index))
}

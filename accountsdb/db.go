package accountsdb

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/btree"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/storage"
)

// DB maps pubkeys to accounts. It keeps a live snapshot plus a stack of older
// snapshots (checkpoints) and searches them newest first.
//
// DB is not safe for concurrent use, see accounts.Accounts.
type DB struct {
	config Config
	logger *slog.Logger
	bases  []string

	live *snapshot

	// checkpoints[0] is the most recent one
	checkpoints []*snapshot

	closed bool
}

func New(config Config) (*DB, error) {

	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	db := &DB{
		config: config,
		logger: config.Logger,
		bases:  make([]string, 1<<config.ShardBits),
	}

	for shard := range db.bases {
		base := shardBase(config, shard)
		err := os.RemoveAll(base)
		if err != nil {
			return nil, fmt.Errorf("clean shard %d: %w", shard, err)
		}
		db.bases[shard] = base
	}

	db.live, err = db.openSnapshot()
	if err != nil {
		return nil, err
	}

	CheckpointDepth.Set(0)
	db.logger.Info("accounts db open", "shards", len(db.bases), "paths", config.Paths)

	return db, nil
}

func (db *DB) onGrow(shard int) func(size int64) {
	label := strconv.Itoa(shard)
	return func(size int64) {
		FileGrowths.WithLabelValues(label).Inc()
		db.logger.Debug("data file grown", "shard", shard, "size", size)
	}
}

func (db *DB) shardOf(id account.Pubkey) int {
	return shardOf(id, db.config.ShardBits)
}

// levels returns the live snapshot followed by the checkpoints, newest first.
func (db *DB) levels() []*snapshot {
	return append([]*snapshot{db.live}, db.checkpoints...)
}

// Load returns the newest version of id. A zero balance record found on the
// way is a tombstone: the account is reported as absent and older levels are
// not consulted.
func (db *DB) Load(id account.Pubkey) (*account.Account, bool, error) {

	shard := db.shardOf(id)

	for _, level := range db.levels() {
		offset, exists := level.index[shard][id]
		if !exists {
			continue
		}
		a, err := level.read(shard, offset)
		if err != nil {
			return nil, false, err
		}
		if a.Tokens == 0 {
			return nil, false, nil
		}
		return a, true, nil
	}

	return nil, false, nil
}

// Store writes a at the live level.
//
// A zero balance removes the key when there are no checkpoints. Otherwise an
// empty tombstone is written so that Purge can tell "zeroed here" apart from
// "not touched here".
func (db *DB) Store(id account.Pubkey, a *account.Account) error {

	if db.closed {
		return storage.ErrClosed
	}

	shard := db.shardOf(id)
	index := db.live.index[shard]
	file := db.live.files[shard]

	if a.Tokens == 0 && len(db.checkpoints) == 0 {
		delete(index, id)
		return nil
	}

	record := a
	if a.Tokens == 0 {
		record = &account.Account{}
	}

	payload, err := record.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}

	offset := storage.Unallocated
	if existing, exists := index[id]; exists {
		l, err := file.LenAt(existing)
		if err != nil {
			return fmt.Errorf("store %s: %w", id, err)
		}
		if uint64(len(payload)) <= l {
			offset = existing
		}
	}

	offset, err = file.Write(payload, offset)
	if err != nil {
		return fmt.Errorf("store %s: %w", id, err)
	}
	index[id] = offset

	return nil
}

type BatchEntry struct {
	Keys     []account.Pubkey
	Accounts []*account.Account

	// Err marks an entry that failed validation or loading, it is skipped.
	Err error
}

// StoreBatch stores every account of every successful entry. Failed entries
// are not touched at all.
func (db *DB) StoreBatch(entries []BatchEntry) error {

	for i, entry := range entries {
		if entry.Err != nil {
			continue
		}
		if len(entry.Keys) != len(entry.Accounts) {
			return fmt.Errorf("entry %d: %d keys but %d accounts", i, len(entry.Keys), len(entry.Accounts))
		}
		for j, id := range entry.Keys {
			err := db.Store(id, entry.Accounts[j])
			if err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
		}
	}

	return nil
}

func (db *DB) TransactionCount() uint64 {
	return db.live.transactionCount
}

func (db *DB) IncrementTransactionCount(n uint64) {
	db.live.transactionCount += n
}

type liveEntry struct {
	id     account.Pubkey
	shard  int
	offset uint64
}

// ordered indexes the live level by pubkey.
func (db *DB) ordered() *btree.BTreeG[liveEntry] {

	tree := btree.NewG(32, func(a, b liveEntry) bool {
		return a.id.Compare(b.id) < 0
	})

	for shard, index := range db.live.index {
		for id, offset := range index {
			tree.ReplaceOrInsert(liveEntry{id: id, shard: shard, offset: offset})
		}
	}

	return tree
}

// Keys lists the pubkeys stored at the live level, tombstones included, sorted.
func (db *DB) Keys() []account.Pubkey {

	keys := []account.Pubkey{}
	db.ordered().Ascend(func(e liveEntry) bool {
		keys = append(keys, e.id)
		return true
	})

	return keys
}

type Entry struct {
	ID      account.Pubkey
	Account *account.Account
}

// Accounts returns the live level records accepted by filter, sorted by pubkey.
func (db *DB) Accounts(filter func(id account.Pubkey, a *account.Account) bool) ([]Entry, error) {

	result := []Entry{}
	var err error
	db.ordered().Ascend(func(e liveEntry) bool {
		var a *account.Account
		a, err = db.live.read(e.shard, e.offset)
		if err != nil {
			return false
		}
		if filter == nil || filter(e.id, a) {
			result = append(result, Entry{ID: e.id, Account: a})
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

type ShardStats struct {
	Shard    int    `json:"shard"`
	Path     string `json:"path"`
	Entries  int    `json:"entries"`
	FileSize int64  `json:"file_size"`
	Cursor   uint64 `json:"cursor"`
}

type Stats struct {
	Instance         string       `json:"instance"`
	Depth            int          `json:"depth"`
	TransactionCount uint64       `json:"transaction_count"`
	Shards           []ShardStats `json:"shards"`
}

func (db *DB) Stats() Stats {

	stats := Stats{
		Instance:         db.config.Instance,
		Depth:            db.Depth(),
		TransactionCount: db.TransactionCount(),
		Shards:           []ShardStats{},
	}

	for shard, f := range db.live.files {
		stats.Shards = append(stats.Shards, ShardStats{
			Shard:    shard,
			Path:     f.Path(),
			Entries:  len(db.live.index[shard]),
			FileSize: f.Size(),
			Cursor:   f.Cursor(),
		})
	}

	return stats
}

// Close releases every mapped file. Data directories are left on disk. Every
// mutating operation fails with storage.ErrClosed afterwards.
func (db *DB) Close() error {

	if db.closed {
		return nil
	}
	db.closed = true

	var lastErr error
	for _, level := range db.levels() {
		err := level.close()
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

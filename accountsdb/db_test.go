package accountsdb

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/storage"
)

func newTestDB(t *testing.T, shardBits uint) *DB {
	db, err := New(Config{
		Paths:     []string{t.TempDir(), t.TempDir()},
		ShardBits: shardBits,
		Storage: storage.Options{
			InitialSize: 1024,
			GrowSize:    512,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	biff.AssertNil(err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func pubkey(first byte, rest byte) account.Pubkey {
	p := account.Pubkey{}
	p[0] = first
	for i := 1; i < len(p); i++ {
		p[i] = rest
	}
	return p
}

func withTokens(tokens uint64) *account.Account {
	return &account.Account{Tokens: tokens}
}

func mustLoad(db *DB, id account.Pubkey) *account.Account {
	a, found, err := db.Load(id)
	biff.AssertNil(err)
	if !found {
		return nil
	}
	return a
}

func TestShardOf(t *testing.T) {

	biff.AssertEqual(shardOf(pubkey(0xff, 0), 0), 0)
	biff.AssertEqual(shardOf(pubkey(0x7f, 0), 1), 0)
	biff.AssertEqual(shardOf(pubkey(0x80, 0), 1), 1)
	biff.AssertEqual(shardOf(pubkey(0xc0, 0), 2), 3)
	biff.AssertEqual(shardOf(pubkey(0xab, 0), 8), 0xab)
}

func TestNew_InvalidConfig(t *testing.T) {

	_, err := New(Config{})
	biff.AssertNotNil(err)

	_, err = New(Config{Paths: []string{t.TempDir()}, ShardBits: 9})
	biff.AssertNotNil(err)
}

func TestStore_RoundTrip(t *testing.T) {

	db := newTestDB(t, 1)

	a := &account.Account{
		Tokens:     1000,
		Owner:      account.NewRandomPubkey(),
		Executable: true,
		Loader:     account.NewRandomPubkey(),
		Userdata:   []byte("some program data"),
	}

	for _, id := range []account.Pubkey{pubkey(0x01, 1), pubkey(0x81, 1)} {
		biff.AssertNil(db.Store(id, a))
		biff.AssertTrue(mustLoad(db, id).Equal(a))
	}

	biff.AssertNil(mustLoad(db, pubkey(0x02, 2)))
}

func TestStore_ManyAccounts(t *testing.T) {

	db := newTestDB(t, 2)

	ids := []account.Pubkey{}
	for i := 0; i < 300; i++ {
		id := account.NewRandomPubkey()
		ids = append(ids, id)
		biff.AssertNil(db.Store(id, withTokens(uint64(i+1))))
	}

	for i, id := range ids {
		biff.AssertEqual(mustLoad(db, id).Tokens, uint64(i+1))
	}
	biff.AssertEqual(len(db.Keys()), 300)
}

func TestStore_ZeroBalanceWithoutCheckpoints(t *testing.T) {

	db := newTestDB(t, 1)
	id := pubkey(0x10, 1)

	biff.AssertNil(db.Store(id, withTokens(10)))
	biff.AssertNil(db.Store(id, withTokens(0)))

	biff.AssertNil(mustLoad(db, id))
	biff.AssertEqual(len(db.Keys()), 0)
}

func TestStore_TombstoneWithCheckpoints(t *testing.T) {

	db := newTestDB(t, 1)
	id := pubkey(0x90, 1)

	biff.AssertNil(db.Store(id, withTokens(10)))
	biff.AssertNil(db.Checkpoint())

	biff.AssertNil(db.Store(id, withTokens(0)))

	biff.AssertNil(mustLoad(db, id))
	biff.AssertEqual(db.Keys(), []account.Pubkey{id})

	biff.AssertNil(db.Checkpoint())
	biff.AssertNil(db.Rollback())
	biff.AssertNil(mustLoad(db, id))

	// the older level still holds the funds
	biff.AssertNil(db.Rollback())
	biff.AssertEqual(mustLoad(db, id).Tokens, uint64(10))
}

func TestStore_InPlace(t *testing.T) {

	biff.Alternative("Update in place", func(a *biff.A) {

		db := newTestDB(t, 0)
		id := pubkey(0x01, 1)

		biff.AssertNil(db.Store(id, &account.Account{Tokens: 5, Userdata: make([]byte, 100)}))
		cursor := db.live.files[0].Cursor()
		offset := db.live.index[0][id]

		a.Alternative("Smaller record reuses the slot", func(a *biff.A) {
			biff.AssertNil(db.Store(id, &account.Account{Tokens: 4, Userdata: make([]byte, 10)}))
			biff.AssertEqual(db.live.index[0][id], offset)
			biff.AssertEqual(db.live.files[0].Cursor(), cursor)
			biff.AssertEqual(mustLoad(db, id).Tokens, uint64(4))
		})

		a.Alternative("Larger record is appended", func(a *biff.A) {
			biff.AssertNil(db.Store(id, &account.Account{Tokens: 6, Userdata: make([]byte, 200)}))
			biff.AssertNotEqual(db.live.index[0][id], offset)
			biff.AssertTrue(db.live.files[0].Cursor() > cursor)
			biff.AssertEqual(len(mustLoad(db, id).Userdata), 200)
		})
	})
}

func TestStore_Growth(t *testing.T) {

	db := newTestDB(t, 0)

	ids := []account.Pubkey{}
	for i := 0; i < 50; i++ {
		id := account.NewRandomPubkey()
		ids = append(ids, id)
		biff.AssertNil(db.Store(id, &account.Account{Tokens: uint64(i + 1), Userdata: make([]byte, 64)}))
	}

	biff.AssertTrue(db.live.files[0].Size() > 1024)
	for i, id := range ids {
		biff.AssertEqual(mustLoad(db, id).Tokens, uint64(i+1))
	}
}

func TestStoreBatch(t *testing.T) {

	db := newTestDB(t, 1)

	a, b, c := pubkey(0x01, 1), pubkey(0x82, 2), pubkey(0x03, 3)

	err := db.StoreBatch([]BatchEntry{
		{Keys: []account.Pubkey{a, b}, Accounts: []*account.Account{withTokens(1), withTokens(2)}},
		{Keys: []account.Pubkey{c}, Accounts: []*account.Account{withTokens(3)}, Err: account.ErrAccountNotFound},
	})
	biff.AssertNil(err)

	biff.AssertEqual(mustLoad(db, a).Tokens, uint64(1))
	biff.AssertEqual(mustLoad(db, b).Tokens, uint64(2))
	biff.AssertNil(mustLoad(db, c))

	err = db.StoreBatch([]BatchEntry{
		{Keys: []account.Pubkey{a, b}, Accounts: []*account.Account{withTokens(1)}},
	})
	biff.AssertNotNil(err)
}

func TestTransactionCount(t *testing.T) {

	db := newTestDB(t, 1)

	db.IncrementTransactionCount(3)
	biff.AssertNil(db.Checkpoint())
	biff.AssertEqual(db.TransactionCount(), uint64(3))

	db.IncrementTransactionCount(4)
	biff.AssertEqual(db.TransactionCount(), uint64(7))

	biff.AssertNil(db.Rollback())
	biff.AssertEqual(db.TransactionCount(), uint64(3))
}

func TestAccounts_Filter(t *testing.T) {

	db := newTestDB(t, 1)

	owner := account.NewRandomPubkey()
	db.Store(pubkey(0x81, 1), &account.Account{Tokens: 1, Owner: owner})
	db.Store(pubkey(0x01, 1), &account.Account{Tokens: 2, Owner: owner})
	db.Store(pubkey(0x02, 1), &account.Account{Tokens: 3})

	entries, err := db.Accounts(func(id account.Pubkey, a *account.Account) bool {
		return a.Owner == owner
	})
	biff.AssertNil(err)
	biff.AssertEqual(len(entries), 2)
	biff.AssertEqual(entries[0].ID, pubkey(0x01, 1))
	biff.AssertEqual(entries[1].ID, pubkey(0x81, 1))

	all, err := db.Accounts(nil)
	biff.AssertNil(err)
	biff.AssertEqual(len(all), 3)
}

func TestStats(t *testing.T) {

	db := newTestDB(t, 1)
	db.Store(pubkey(0x81, 1), withTokens(1))
	db.IncrementTransactionCount(2)

	stats := db.Stats()
	biff.AssertEqual(stats.Depth, 0)
	biff.AssertEqual(stats.TransactionCount, uint64(2))
	biff.AssertEqual(len(stats.Shards), 2)
	biff.AssertEqual(stats.Shards[0].Entries, 0)
	biff.AssertEqual(stats.Shards[1].Entries, 1)

	_, err := os.Stat(stats.Shards[1].Path)
	biff.AssertNil(err)
}

func TestLayout(t *testing.T) {

	db := newTestDB(t, 1)
	dataFile := func(dir string) string {
		return filepath.Join(dir, storage.DataFileName)
	}

	biff.AssertNil(db.Checkpoint())
	biff.AssertNil(db.Checkpoint())

	for _, base := range db.bases {
		for _, dir := range []string{mainDir(base), checkpointDir(base, 0), checkpointDir(base, 1)} {
			_, err := os.Stat(dataFile(dir))
			biff.AssertNil(err)
		}
	}

	biff.AssertNil(db.Rollback())

	for _, base := range db.bases {
		_, err := os.Stat(checkpointDir(base, 1))
		biff.AssertTrue(os.IsNotExist(err))
	}
}

func TestRollback_EmptyStack(t *testing.T) {

	db := newTestDB(t, 1)

	err := db.Rollback()
	biff.AssertTrue(errors.Is(err, ErrEmptyStack))
}

package accountsdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulldump/accountsdb/storage"
)

var ErrEmptyStack = errors.New("no checkpoint to roll back to")

func (db *DB) Depth() int {
	return len(db.checkpoints)
}

// Checkpoint freezes the live level on top of the stack by renaming its
// directories, then starts an empty live level. The transaction count carries
// over.
func (db *DB) Checkpoint() error {

	if db.closed {
		return storage.ErrClosed
	}

	n := len(db.checkpoints)

	for shard, base := range db.bases {
		to := checkpointDir(base, n)
		err := moveDir(mainDir(base), to)
		if err != nil {
			return fmt.Errorf("checkpoint shard %d: %w", shard, err)
		}
		db.live.files[shard].Relocate(to)
	}

	frozen := db.live
	fresh, err := db.openSnapshot()
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	fresh.transactionCount = frozen.transactionCount

	db.live = fresh
	db.checkpoints = append(
		[]*snapshot{frozen},
		db.checkpoints...,
	)

	CheckpointDepth.Set(float64(len(db.checkpoints)))
	CheckpointOperations.WithLabelValues("checkpoint").Inc()
	db.logger.Info("checkpoint", "depth", len(db.checkpoints), "transaction_count", frozen.transactionCount)

	return nil
}

// Rollback drops the live level and restores the most recent checkpoint,
// transaction count included.
func (db *DB) Rollback() error {

	if db.closed {
		return storage.ErrClosed
	}

	if len(db.checkpoints) == 0 {
		return ErrEmptyStack
	}

	restored := db.checkpoints[0]
	rest := db.checkpoints[1:]
	n := len(rest)

	err := db.live.close()
	if err != nil {
		return fmt.Errorf("rollback: close live level: %w", err)
	}

	for shard, base := range db.bases {
		to := mainDir(base)
		err := moveDir(checkpointDir(base, n), to)
		if err != nil {
			return fmt.Errorf("rollback shard %d: %w", shard, err)
		}
		restored.files[shard].Relocate(to)
	}

	db.live = restored
	db.checkpoints = rest

	CheckpointDepth.Set(float64(len(db.checkpoints)))
	CheckpointOperations.WithLabelValues("rollback").Inc()
	db.logger.Info("rollback", "depth", len(db.checkpoints), "transaction_count", restored.transactionCount)

	return nil
}

// Purge merges the oldest checkpoints into their newer neighbour until at most
// depth checkpoints remain. Merging into the live level happens when the whole
// stack is purged. The visible state (as seen by Load) does not change.
func (db *DB) Purge(depth int) error {

	if db.closed {
		return storage.ErrClosed
	}

	if depth < 0 {
		depth = 0
	}

	for len(db.checkpoints) > depth {

		last := len(db.checkpoints) - 1
		purged := db.checkpoints[last]
		db.checkpoints = db.checkpoints[:last]

		into := db.live
		if len(db.checkpoints) > 0 {
			into = db.checkpoints[len(db.checkpoints)-1]
		}

		err := merge(into, purged)
		if err != nil {
			return fmt.Errorf("purge: %w", err)
		}

		err = purged.close()
		if err != nil {
			return fmt.Errorf("purge: close: %w", err)
		}

		err = db.renumber()
		if err != nil {
			return fmt.Errorf("purge: %w", err)
		}

		CheckpointOperations.WithLabelValues("purge").Inc()
	}

	CheckpointDepth.Set(float64(len(db.checkpoints)))
	db.logger.Info("purge", "depth", len(db.checkpoints))

	return nil
}

// renumber removes chk/0, whose snapshot was just merged away, and shifts the
// remaining checkpoint directories down by one, so that stack position i is
// always stored in chk/<depth-1-i>.
func (db *DB) renumber() error {

	depth := len(db.checkpoints)

	for shard, base := range db.bases {

		err := os.RemoveAll(checkpointDir(base, 0))
		if err != nil {
			return fmt.Errorf("remove purged shard %d: %w", shard, err)
		}

		for i := depth - 1; i >= 0; i-- {
			from := checkpointDir(base, depth-i)
			to := checkpointDir(base, depth-1-i)
			err := os.Rename(from, to)
			if err != nil {
				return fmt.Errorf("renumber shard %d: %w", shard, err)
			}
			db.checkpoints[i].files[shard].Relocate(to)
		}
	}

	return nil
}

// merge pulls into `into` every non zero record only reachable through
// `purged`, then drops the tombstones of `into`: nothing older can need them.
func merge(into, purged *snapshot) error {

	for shard, index := range purged.index {

		target := into.index[shard]
		writer := into.files[shard]

		for id, offset := range index {
			if _, exists := target[id]; exists {
				continue
			}
			a, err := purged.read(shard, offset)
			if err != nil {
				return err
			}
			if a.Tokens == 0 {
				continue
			}
			payload, err := a.MarshalBinary()
			if err != nil {
				return fmt.Errorf("encode %s: %w", id, err)
			}
			written, err := writer.Write(payload, storage.Unallocated)
			if err != nil {
				return fmt.Errorf("merge %s: %w", id, err)
			}
			target[id] = written
		}

		for id, offset := range target {
			a, err := into.read(shard, offset)
			if err != nil {
				return err
			}
			if a.Tokens == 0 {
				delete(target, id)
			}
		}
	}

	return nil
}

// moveDir renames from to `to`, replacing whatever was there.
func moveDir(from, to string) error {

	err := os.RemoveAll(to)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(to), 0755)
	if err != nil {
		return err
	}

	return os.Rename(from, to)
}

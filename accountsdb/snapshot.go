package accountsdb

import (
	"fmt"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/storage"
)

// snapshot is one self-consistent level: an index and a data file per shard.
type snapshot struct {
	index            []map[account.Pubkey]uint64
	files            []*storage.DataFile
	transactionCount uint64
}

func (db *DB) openSnapshot() (*snapshot, error) {

	s := &snapshot{
		index: make([]map[account.Pubkey]uint64, len(db.bases)),
		files: make([]*storage.DataFile, len(db.bases)),
	}

	for shard, base := range db.bases {
		f, err := storage.Open(mainDir(base), db.config.Storage)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("open shard %d: %w", shard, err)
		}
		f.OnGrow = db.onGrow(shard)
		s.files[shard] = f
		s.index[shard] = map[account.Pubkey]uint64{}
	}

	return s, nil
}

func (s *snapshot) read(shard int, offset uint64) (*account.Account, error) {

	payload, err := s.files[shard].Read(offset)
	if err != nil {
		return nil, fmt.Errorf("read shard %d offset %d: %w", shard, offset, err)
	}

	a := &account.Account{}
	err = a.UnmarshalBinary(payload)
	if err != nil {
		return nil, fmt.Errorf("decode shard %d offset %d: %w", shard, offset, err)
	}

	return a, nil
}

func (s *snapshot) close() error {
	var lastErr error
	for _, f := range s.files {
		if f == nil {
			continue
		}
		err := f.Close()
		if err != nil {
			lastErr = err
		}
	}
	return lastErr
}

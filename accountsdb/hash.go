package accountsdb

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/fulldump/accountsdb/account"
)

// HashState digests the live level only: the state change since the last
// checkpoint. Tombstones are part of it.
//
// Serialization, ascending by pubkey:
//
//	count u64 | (pubkey [32] | len u64 | record)*
//
// All integers little endian.
func (db *DB) HashState() (account.Hash, error) {

	tree := db.ordered()

	h := sha256.New()
	word := make([]byte, 8)

	binary.LittleEndian.PutUint64(word, uint64(tree.Len()))
	h.Write(word)

	var err error
	tree.Ascend(func(e liveEntry) bool {
		var payload []byte
		payload, err = db.live.files[e.shard].Read(e.offset)
		if err != nil {
			err = fmt.Errorf("hash %s: %w", e.id, err)
			return false
		}
		h.Write(e.id[:])
		binary.LittleEndian.PutUint64(word, uint64(len(payload)))
		h.Write(word)
		h.Write(payload)
		return true
	})
	if err != nil {
		return account.Hash{}, err
	}

	result := account.Hash{}
	copy(result[:], h.Sum(nil))

	return result, nil
}

package accountsdb

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/storage"
)

const MaxShardBits = 8

type Config struct {
	// Paths are the storage roots. Shard i lives under Paths[i % len(Paths)].
	Paths []string

	// ShardBits is the number of high bits of the first pubkey byte used to
	// select a shard: 1 << ShardBits shards.
	ShardBits uint

	// Instance names the directory under every path, a random uuid by default.
	Instance string

	Storage storage.Options

	Logger *slog.Logger
}

func (c Config) withDefaults() (Config, error) {

	if len(c.Paths) == 0 {
		return c, fmt.Errorf("at least one storage path is required")
	}
	if c.ShardBits > MaxShardBits {
		return c, fmt.Errorf("shard bits must be at most %d, got %d", MaxShardBits, c.ShardBits)
	}
	if c.Instance == "" {
		c.Instance = uuid.New().String()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	c.Logger = c.Logger.With("component", "accountsdb", "instance", c.Instance)

	return c, nil
}

// shardOf is total: every pubkey maps to exactly one shard in [0, 1<<bits).
func shardOf(id account.Pubkey, bits uint) int {
	return int(id[0] >> (8 - bits))
}

// Layout of one shard:
//
//	<path>/<instance>/shard-<xx>/main/data      live snapshot
//	<path>/<instance>/shard-<xx>/chk/<n>/data   stacked snapshot n, 0 is the oldest
func shardBase(c Config, shard int) string {
	root := c.Paths[shard%len(c.Paths)]
	return filepath.Join(root, c.Instance, fmt.Sprintf("shard-%02x", shard))
}

func mainDir(base string) string {
	return filepath.Join(base, "main")
}

func checkpointDir(base string, n int) string {
	return filepath.Join(base, "chk", strconv.Itoa(n))
}

package database

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fulldump/accountsdb/accounts"
	"github.com/fulldump/accountsdb/accountsdb"
	"github.com/fulldump/accountsdb/storage"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

type Config struct {
	Paths           []string
	ShardBits       uint
	InitialFileSize int64
	FileGrowSize    int64
	Logger          *slog.Logger
}

type Database struct {
	config   *Config
	logger   *slog.Logger
	mutex    sync.RWMutex
	status   string
	accounts *accounts.Accounts
	exit     chan struct{}
	stopOnce sync.Once
}

func NewDatabase(config *Config) *Database {

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Database{
		config: config,
		logger: logger.With("component", "database"),
		status: StatusOpening,
		exit:   make(chan struct{}),
	}
}

func (db *Database) GetStatus() string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.status
}

func (db *Database) setStatus(status string) {
	db.mutex.Lock()
	db.status = status
	db.mutex.Unlock()
}

// Accounts returns the store, nil until Load succeeds.
func (db *Database) Accounts() *accounts.Accounts {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.accounts
}

func (db *Database) Load() error {

	db.logger.Info("opening accounts", "paths", db.config.Paths, "shard_bits", db.config.ShardBits)

	t0 := time.Now()
	a, err := accounts.New(accountsdb.Config{
		Paths:     db.config.Paths,
		ShardBits: db.config.ShardBits,
		Storage: storage.Options{
			InitialSize: db.config.InitialFileSize,
			GrowSize:    db.config.FileGrowSize,
		},
		Logger: db.config.Logger,
	})
	if err != nil {
		db.setStatus(StatusClosing)
		db.logger.Error("open accounts", "error", err)
		return fmt.Errorf("open accounts: %w", err)
	}

	db.mutex.Lock()
	if db.status == StatusClosing {
		// stopped while opening
		db.mutex.Unlock()
		return a.Close()
	}
	db.accounts = a
	db.status = StatusOperating
	db.mutex.Unlock()

	db.logger.Info("accounts ready", "elapsed", time.Since(t0))

	return nil
}

// Start opens the accounts and blocks until Stop. A failed open is returned
// right away.
func (db *Database) Start() error {

	loaded := make(chan error, 1)
	go func() {
		loaded <- db.Load()
	}()

	select {
	case err := <-loaded:
		if err != nil {
			return err
		}
	case <-db.exit:
		return nil
	}

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	var err error

	db.stopOnce.Do(func() {
		defer close(db.exit)

		db.mutex.Lock()
		db.status = StatusClosing
		a := db.accounts
		db.mutex.Unlock()

		if a == nil {
			return
		}

		db.logger.Info("closing accounts")
		err = a.Close()
		if err != nil {
			db.logger.Error("close accounts", "error", err)
		}
	})

	return err
}

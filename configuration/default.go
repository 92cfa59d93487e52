package configuration

import (
	"github.com/fulldump/accountsdb/storage"
)

func Default() Configuration {
	return Configuration{
		HttpAddr:          "127.0.0.1:8080",
		Paths:             "data/accounts0,data/accounts1",
		ShardBits:         1,
		InitialFileSize:   storage.DefaultInitialSize,
		FileGrowSize:      storage.DefaultGrowSize,
		LogLevel:          "info",
		EnableCompression: true,
		ShowBanner:        true,
		ShowConfig:        false,
	}
}

package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Paths             string `usage:"comma separated storage directories, shards are spread across them"`
	ShardBits         uint   `usage:"number of pubkey bits used to select a shard (0..8)"`
	InitialFileSize   int64  `usage:"initial size in bytes of every data file"`
	FileGrowSize      int64  `usage:"bytes added to a data file when it is full"`
	LogLevel          string `usage:"log level: debug, info, warn or error"`
	EnableCompression bool   `usage:"gzip responses when the client accepts it"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
}

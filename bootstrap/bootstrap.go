package bootstrap

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fulldump/box"

	"github.com/fulldump/accountsdb/api"
	"github.com/fulldump/accountsdb/configuration"
	"github.com/fulldump/accountsdb/database"
	"github.com/fulldump/accountsdb/service"
	"github.com/fulldump/accountsdb/utils"
)

var VERSION = "dev"

func Bootstrap(c *configuration.Configuration) (start, stop func(), err error) {

	logger, err := utils.NewLogger(os.Stderr, c.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	paths := c.SplitPaths()
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no storage paths configured")
	}

	db := database.NewDatabase(&database.Config{
		Paths:           paths,
		ShardBits:       c.ShardBits,
		InitialFileSize: c.InitialFileSize,
		FileGrowSize:    c.FileGrowSize,
		Logger:          logger,
	})

	b := api.Build(service.NewService(db), VERSION)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog(log.New(os.Stdout, "ACCESS: ", log.Lshortfile)),
		api.PrettyErrorInterceptor,
		api.InterceptorUnavailable(db),
		box.RecoverFromPanic,
	)

	s := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen: %w", err)
	}
	logger.Info("listening", "addr", c.HttpAddr)

	stop = func() {
		db.Stop()
		s.Shutdown(context.Background())
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for {
			sig := <-signalChan
			logger.Info("signal received", "signal", sig.String())
			stop()
		}
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Start()
			if err != nil {
				logger.Error("database", "error", err)
				stop()
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Serve(ln)
			if err != nil && err != http.ErrServerClosed {
				logger.Error("http server", "error", err)
			}
		}()

		wg.Wait()
	}

	return
}

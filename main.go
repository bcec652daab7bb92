package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robokassa/config"
	"robokassa/internal"
	"robokassa/services"
)

const shutdownTimeout = 10 * time.Second

func main() {

	logger := internal.NewLogger("internal", false, nil)

	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	logger.Info("using config file: " + *configPath)
	conf, err := config.GetConfig(*configPath)
	if err != nil {
		logger.Error("boot", err)
		return
	}

	var mongo services.Database
	if conf.Mongo.Enabled {
		client, err := internal.NewMongoClient(conf)
		if err != nil {
			logger.Error("mongo client", err)
			return
		}
		mongo = client
		logger.Info("mongo client initialized")
	}

	merchant, err := internal.NewMerchant(conf)
	if err != nil {
		logger.Error("merchant", err)
		return
	}
	merchant.SetLogger(internal.NewLogger("merchant", conf.IsDebug, mongo))

	server := internal.NewServer(conf)
	server.SetLogger(internal.NewLogger("server", conf.IsDebug, mongo))
	server.SetMerchant(merchant)
	server.SetDatabase(mongo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", err)
		}
	}()

	err = server.Start()
	if err != nil {
		logger.Error("server start", err)
		return
	}
	<-done

}

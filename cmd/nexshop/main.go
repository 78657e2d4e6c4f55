package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexshop/nexshop/config"
	"github.com/nexshop/nexshop/internal/adminapi"
	"github.com/nexshop/nexshop/internal/app"
	"github.com/nexshop/nexshop/internal/shopapi"
	"github.com/nexshop/nexshop/internal/webserver"
	"go.uber.org/zap"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "/etc/nexshop.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
)

var (
	BuildVersion string
	ReleaseDate  string
)

func printVersion() {
	fmt.Printf("nexshop %s (built %s)\n", BuildVersion, ReleaseDate)
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		printVersion()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database schema recreated")
		return
	}

	webserver.Init(application)
	adminapi.InitRouter()
	shopapi.InitRouter()

	done := make(chan error, 1)
	go func() {
		done <- webserver.Listen()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			zap.S().Errorf("web server stopped: %v", err)
		}
	case sig := <-quit:
		zap.S().Infof("received signal %s, shutting down", sig)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/kardianos/service"
	"go.uber.org/zap/zapcore"

	"github.com/lightyen/ipv6-checker/config"
	"github.com/lightyen/ipv6-checker/server"
	"github.com/lightyen/ipv6-checker/zok"
	"github.com/lightyen/ipv6-checker/zok/log"
)

func main() {
	if !service.Interactive() {
		// service managers start us in a system directory
		if exe, err := os.Executable(); err == nil {
			_ = os.Chdir(filepath.Dir(exe))
		}
	}

	if err := config.Parse(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if config.PrintVersion {
		fmt.Println(config.Version)
		return
	}

	if config.Command != "" {
		os.Exit(handleServiceCommand(config.Command))
	}

	if !service.Interactive() {
		os.Exit(runAsService())
	}

	ctx, cancel := zok.WithExit(context.Background())
	defer cancel()
	if err := runServer(ctx); err != nil {
		os.Exit(1)
	}
}

// runServer serves until ctx is done.
func runServer(ctx context.Context) error {
	conf := config.Config()
	if err := log.Open(log.Options{Mode: conf.LogMode, Filename: conf.LogFile, Level: config.LogLevel}); err != nil {
		log.Error("log:", err)
	}
	defer func() {
		_ = log.Close()
	}()

	if config.LogLevel > zapcore.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	return server.New(conf).Run(ctx)
}

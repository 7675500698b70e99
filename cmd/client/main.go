package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/atinyakov/secretkeeper/internal/client/shell"
	"github.com/atinyakov/secretkeeper/internal/client/storage"
	"github.com/atinyakov/secretkeeper/internal/logger"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and starts the shell over the vault file.
func main() {
	var (
		vaultFile string
		logLevel  string
		showVer   bool
	)

	flag.StringVar(&vaultFile, "vault", storage.DefaultFile, "path to the vault file")
	flag.StringVar(&logLevel, "log-level", "warn", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("secretkeeper client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	sh, err := shell.New(os.Stdin, os.Stdout, storage.NewFileStore(vaultFile, log.Log), log.Log)
	if err != nil {
		log.Log.Fatal("cannot open vault", zap.String("file", vaultFile), zap.Error(err))
	}
	sh.Run()
}

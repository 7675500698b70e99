// Package main initializes and starts the secretkeeper HTTPS server,
// setting up configuration, logging, the secret store, services, handlers,
// and mutual TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"os"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/secretkeeper/internal/config"
	"github.com/atinyakov/secretkeeper/internal/db"
	"github.com/atinyakov/secretkeeper/internal/logger"
	"github.com/atinyakov/secretkeeper/internal/middleware"
	"github.com/atinyakov/secretkeeper/internal/repository"
	"github.com/atinyakov/secretkeeper/internal/server/handler/http"
	"github.com/atinyakov/secretkeeper/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// store is what both repository backends provide.
type store interface {
	service.SecretRepository
	db.Purger
}

// openStore connects the backend selected by options.Driver.
func openStore(options *config.Options) (store, *sql.DB, error) {
	switch options.Driver {
	case config.DriverPostgres:
		conn, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresSecretRepository(conn), conn, nil
	default:
		conn, err := db.OpenSQLite(options.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteSecretRepository(conn), conn, nil
	}
}

// serverTLS requires every client to present a certificate signed by the
// CA in caFile.
func serverTLS(certFile, keyFile, caFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load server TLS cert/key: %w", err)
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read CA cert: %w", err)
	}
	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
		return nil, fmt.Errorf("no certificates in %s", caFile)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    caCertPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	repo, conn, err := openStore(options)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.String("driver", options.Driver), zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	db.StartSoftDeleteCleaner(ctx, repo,
		time.Duration(options.CleanInterval),
		time.Duration(options.Retention),
		zapLogger,
	)

	vaultService := service.NewVaultService(repo, zapLogger)
	secretHandler := &http.SecretHandler{VaultService: vaultService, Log: zapLogger}
	router := http.NewRouter(secretHandler, zapLogger, middleware.CertAuth)

	tlsConfig, err := serverTLS(options.CertFile, options.KeyFile, options.CAFile)
	if err != nil {
		zapLogger.Fatal("failed to configure TLS", zap.Error(err))
	}

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("starting HTTPS server",
		zap.String("addr", options.Port),
		zap.String("driver", options.Driver),
	)
	if err := server.ListenAndServeTLS("", ""); err != nil {
		zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
	}
}

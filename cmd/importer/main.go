// Package main reads measurement samples written by the sensor board and
// uploads them to the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bpmonitor/capstone/internal/client/api"
	"github.com/bpmonitor/capstone/internal/importer"
	"github.com/bpmonitor/capstone/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		baseURL  string
		input    string
		userID   string
		username string
		password string
		caFile   string
		skip     int
		follow   bool
		logLevel string
		showVer  bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:3000", "server base URL")
	flag.StringVar(&input, "in", "-", "serial device or capture file; - reads stdin")
	flag.StringVar(&userID, "user", "", "id of the user the samples belong to")
	flag.StringVar(&username, "username", "", "log in as this user and use their id")
	flag.StringVar(&password, "password", "", "password for -username")
	flag.StringVar(&caFile, "ca", "", "CA certificate for an HTTPS server with a private CA")
	flag.IntVar(&skip, "skip", 3, "readings to drop at the start of each sample")
	flag.BoolVar(&follow, "follow", false, "keep reading and upload every sample")
	flag.StringVar(&logLevel, "log", "info", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Capstone importer\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hc *http.Client
	if caFile != "" {
		var err error
		if hc, err = api.NewTLSHTTPClient(caFile); err != nil {
			zapLogger.Fatal("failed to load CA", zap.Error(err))
		}
	}
	client, err := api.New(baseURL, hc)
	if err != nil {
		zapLogger.Fatal("failed to create client", zap.Error(err))
	}

	if username != "" {
		user, err := client.Login(ctx, username, password)
		if err != nil {
			zapLogger.Fatal("login failed", zap.Error(err))
		}
		if user == nil {
			zapLogger.Fatal("invalid username or password", zap.String("username", username))
		}
		if userID == "" {
			userID = user.ID
		}
	}
	if userID == "" {
		zapLogger.Fatal("either -user or -username is required")
	}

	src, closeSrc, err := openInput(input)
	if err != nil {
		zapLogger.Fatal("failed to open input", zap.String("in", input), zap.Error(err))
	}
	defer closeSrc()

	reader := importer.NewReader(src, userID)
	reader.Skip = skip

	for {
		zapLogger.Info("waiting for start")
		sample, err := reader.Next()
		if errors.Is(err, io.EOF) {
			zapLogger.Info("input finished")
			return
		}
		if err != nil {
			zapLogger.Fatal("failed to read sample", zap.Error(err))
		}

		created, err := client.ImportSample(ctx, *sample)
		if err != nil {
			zapLogger.Error("failed to upload sample", zap.Error(err))
		} else {
			zapLogger.Info("sample uploaded",
				zap.String("id", created.ID),
				zap.Int("measurements", len(created.Measurements)),
			)
		}

		if !follow || ctx.Err() != nil {
			return
		}
	}
}

// openInput opens path for reading, with "-" meaning stdin.
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

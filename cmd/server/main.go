package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nickyhof/sqlfp"
	"github.com/nickyhof/sqlfp/config"
	"github.com/nickyhof/sqlfp/core"
)

// Version is set at build time via -ldflags
var Version = "dev"

// loadConfig merges the optional file with whichever flags were set.
func loadConfig(fs *flag.FlagSet, args []string) (config.Config, bool, error) {
	configFile := fs.String("config", "", "YAML configuration file")
	listen := fs.String("listen", config.DefaultListen, "TCP address to listen on")
	dialectName := fs.String("dialect", sqlfp.DefaultDialect, "Default SQL dialect")
	placeholder := fs.String("placeholder", sqlfp.DefaultPlaceholder, "Default placeholder token")
	baseDir := fs.String("baseDir", "", "Catalog directory (memory if empty)")
	gitURL := fs.String("gitUrl", "", "Git URL to clone the catalog from")
	tlsCert := fs.String("tlsCert", "", "TLS certificate file")
	tlsKey := fs.String("tlsKey", "", "TLS private key file")
	jwtSecret := fs.String("jwtSecret", "", "HMAC secret; enables JWT authentication")
	logLevel := fs.String("logLevel", "", "Log level (debug, info, warn, error)")
	showVersion := fs.Bool("version", false, "Show version and exit")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, false, err
	}

	if *showVersion {
		return config.Config{}, true, nil
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return config.Config{}, false, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "dialect":
			cfg.Dialect = *dialectName
		case "placeholder":
			cfg.Placeholder = *placeholder
		case "baseDir":
			cfg.Catalog.Dir = *baseDir
		case "gitUrl":
			cfg.Catalog.GitURL = *gitURL
		case "tlsCert":
			cfg.TLS.CertFile = *tlsCert
		case "tlsKey":
			cfg.TLS.KeyFile = *tlsKey
		case "jwtSecret":
			cfg.Auth.Enabled = true
			cfg.Auth.JWTSecret = *jwtSecret
		case "logLevel":
			cfg.LogLevel = *logLevel
		}
	})

	return cfg, false, cfg.Validate()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}

func main() {
	cfg, versionOnly, err := loadConfig(flag.CommandLine, os.Args[1:])
	if versionOnly {
		fmt.Printf("sqlfp server v%s\n", Version)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fp, err := sqlfp.New(cfg.Options()...)
	if err != nil {
		logger.Fatal("invalid fingerprint options", zap.Error(err))
	}

	cat, err := cfg.OpenCatalog(logger.Named("catalog"))
	if err != nil {
		logger.Fatal("failed to open catalog", zap.String("dir", cfg.Catalog.Dir), zap.Error(err))
	}

	var server *Server
	if cfg.Auth.Enabled {
		server = NewServerWithAuth(fp, cat, &cfg.Auth, logger)
	} else {
		server = NewServer(fp, cat, core.Identity{Name: "sqlfp server", Email: "server@sqlfp.local"}, logger)
	}

	if cfg.TLS.Enabled() {
		err = server.StartTLS(cfg.Listen, cfg.TLS.CertFile, cfg.TLS.KeyFile)
	} else {
		err = server.Start(cfg.Listen)
	}
	if err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("sqlfp server started",
		zap.String("version", Version),
		zap.String("addr", server.Addr()),
		zap.String("dialect", fp.Dialect().Name),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("shutting down", zap.String("signal", sig.String()))
	if err := server.Stop(); err != nil {
		logger.Warn("errors while stopping", zap.Error(err))
	}
	logger.Info("server stopped")
}

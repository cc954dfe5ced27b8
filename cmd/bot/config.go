package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/agalitsyn/team-tasks-bot/version"
)

const EnvPrefix = "TEAM_TASKS_BOT"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	// Filled from TokenFile at startup, never from a flag.
	TokenFile string
	Token     secret.String

	Storage struct {
		Kind    string
		DataDir string
		DBPath  string
	}

	MinIDDigits int
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info).")
	tokenFile := flag.String("token-file", "token.txt", "Path to a file with the Telegram bot token.")
	storageKind := flag.String("storage", "file", "Storage backend (file | sqlite).")
	dataDir := flag.String("data-dir", ".", "Directory for JSON collections (file storage).")
	dbPath := flag.String("db-path", "tasks.db", "Database path (sqlite storage).")
	minIDDigits := flag.Int("min-id-digits", 5, "Minimum digits for a number to be treated as a user ID.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = *logLevel
	if cfg.Log.Level == "debug" {
		cfg.Debug = true
	}

	cfg.TokenFile = *tokenFile
	cfg.Storage.Kind = *storageKind
	cfg.Storage.DataDir = *dataDir
	cfg.Storage.DBPath = *dbPath
	cfg.MinIDDigits = *minIDDigits

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/agalitsyn/secret"
	"github.com/agalitsyn/sqlite"
	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/team-tasks-bot/internal/app"
	"github.com/agalitsyn/team-tasks-bot/internal/model"
	filestorage "github.com/agalitsyn/team-tasks-bot/internal/storage/file"
	sqlitestorage "github.com/agalitsyn/team-tasks-bot/internal/storage/sqlite"
	"github.com/agalitsyn/team-tasks-bot/internal/storage/sqlite/migrations"
)

const updateTimeoutSec = 60

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	setupLogger(cfg.Debug)

	token, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		lgr.Printf("FATAL could not read token file %s: %s", cfg.TokenFile, err)
	}
	cfg.Token = secret.NewString(strings.TrimSpace(string(token)))

	if cfg.Debug {
		log.Printf("DEBUG running with config")
		color.New(color.Faint).Fprintln(os.Stdout, cfg.String())
	}

	tasks, roles, cleanup, err := makeStorage(cfg)
	if err != nil {
		lgr.Printf("FATAL could not init storage: %s", err)
	}
	defer cleanup()

	bot, err := app.NewBot(
		app.BotConfig{
			UpdateTimeout: updateTimeoutSec,
			MinIDDigits:   cfg.MinIDDigits,
		},
		cfg.Token.Unmask(),
		BotDebugLogger{},
		tasks,
		roles,
	)
	if err != nil {
		lgr.Printf("FATAL could not init bot: %s", err)
	}
	bot.SetDebug(cfg.Debug)
	log.Printf("INFO authorized account=%s", bot.GetSelf().UserName)

	bot.Start(ctx)
}

func makeStorage(cfg Config) (model.TaskRepository, model.RoleRepository, func(), error) {
	switch cfg.Storage.Kind {
	case "file":
		tasks, err := filestorage.NewTaskStorage(filepath.Join(cfg.Storage.DataDir, "tasks.json"))
		if err != nil {
			return nil, nil, nil, err
		}
		roles, err := filestorage.NewRoleStorage(filepath.Join(cfg.Storage.DataDir, "roles.json"))
		if err != nil {
			return nil, nil, nil, err
		}
		return tasks, roles, func() {}, nil

	case "sqlite":
		db, err := sqlite.Connect(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sqlite.MigrateUp(db, migrations.FS); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				log.Printf("ERROR closing database: %s", err)
			}
		}
		return sqlitestorage.NewTaskStorage(db), sqlitestorage.NewRoleStorage(db), cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage kind %q", cfg.Storage.Kind)
	}
}

func setupLogger(debug bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if debug {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc)
	}
	lgr.SetupStdLogger(logOpts...)
}

type BotDebugLogger struct{}

func (l BotDebugLogger) Printf(msg string, args ...interface{}) {
	log.Printf("DEBUG "+msg, args...)
}

func (l BotDebugLogger) Println(v ...interface{}) {
	log.Printf("DEBUG bot: %s", fmt.Sprintln(v...))
}

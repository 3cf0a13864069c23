package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"

	"tasknest/internal/apperr"
	"tasknest/internal/auth"
	"tasknest/internal/config"
	"tasknest/internal/db"
	"tasknest/internal/model"
	"tasknest/internal/prefs"
	"tasknest/internal/repo"
)

// App holds the wired core: one store handle created at startup and closed
// at shutdown, with the facade, auth workflow and preference store built
// around it. Commands only ever go through these.
type App struct {
	Config config.Config
	Tasks  *repo.TaskRepo
	Auth   *auth.Service
	Prefs  *prefs.Store
	Log    *slog.Logger

	sqlDB *sql.DB
}

func openApp(configPath, dbPath string, log *slog.Logger) (*App, error) {
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "tasknest.db")
	}
	if cfg.PrefsPath == "" {
		cfg.PrefsPath = filepath.Join(filepath.Dir(cfgPath), "prefs.json")
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, err
	}

	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	preferences, err := prefs.Open(cfg.PrefsPath, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := db.NewStore(sqlDB)

	return &App{
		Config: cfg,
		Tasks:  repo.NewTaskRepo(store, log),
		Auth:   auth.NewService(store, nil, log),
		Prefs:  preferences,
		Log:    log,
		sqlDB:  sqlDB,
	}, nil
}

func (a *App) Close() {
	a.Prefs.Close()
	_ = a.sqlDB.Close()
}

// currentUserID resolves the active session from the preference store.
func (a *App) currentUserID() (int64, error) {
	userID := a.Prefs.UserID()
	if userID == nil {
		return 0, apperr.Auth("not logged in, run `tasknest login` first")
	}
	return *userID, nil
}

// ownedTask loads a task and checks it belongs to the session user. A task
// owned by someone else reads as absent, so ids cannot be probed across
// accounts.
func (a *App) ownedTask(ctx context.Context, id int64) (model.Task, error) {
	userID, err := a.currentUserID()
	if err != nil {
		return model.Task{}, err
	}

	task, err := a.Tasks.TaskByID(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if task.UserID != userID {
		return model.Task{}, apperr.NotFound("task %d", id)
	}

	return task, nil
}

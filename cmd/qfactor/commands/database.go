package commands

import (
	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/db"
	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/store"
	"github.com/teranos/qfactor/logger"
)

// openStore opens and migrates the history database. The returned close
// func is never nil.
func openStore(cfg *am.Config) (*store.FactorStore, func(), error) {
	path := cfg.GetDatabasePath()
	database, err := db.OpenWithMigrations(path, logger.ComponentLogger("db"))
	if err != nil {
		return nil, func() {}, errors.Wrapf(err, "failed to open history database at %s", path)
	}
	return store.New(database, logger.ComponentLogger("store")), func() { database.Close() }, nil
}

// requireStorage reports a hinted error when history is switched off
func requireStorage(cfg *am.Config) error {
	if cfg.Storage.Enabled {
		return nil
	}
	return errors.WithHint(
		errors.New("factor storage is disabled"),
		"run `qfactor am set storage.enabled true`")
}

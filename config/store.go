package config

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	defaultDBDirname    = "data"
	defaultOpenAttempts = uint(5)
	defaultOpenDelay    = 400 * time.Millisecond
)

// StoreConfig defines where and how the ledger state is persisted
type StoreConfig struct {
	DBDir        string        `long:"dbdir" description:"Directory of the ledger database"`
	OpenAttempts uint          `long:"openattempts" description:"Number of attempts to open the database while another process holds it"`
	OpenDelay    time.Duration `long:"opendelay" description:"Delay between attempts to open the database"`
}

func (cfg *StoreConfig) Validate() error {
	if cfg.DBDir == "" {
		return fmt.Errorf("empty database directory")
	}

	if cfg.OpenAttempts == 0 {
		return fmt.Errorf("the number of open attempts should be positive")
	}

	if cfg.OpenDelay < 0 {
		return fmt.Errorf("invalid open delay: %v", cfg.OpenDelay)
	}

	return nil
}

func DefaultStoreConfigWithHomePath(homePath string) StoreConfig {
	return StoreConfig{
		DBDir:        filepath.Join(homePath, defaultDBDirname),
		OpenAttempts: defaultOpenAttempts,
		OpenDelay:    defaultOpenDelay,
	}
}

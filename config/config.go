package config

import (
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"

	"github.com/babylonchain/staking-ledger/util"
)

const (
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogFilename    = "stkd.log"
	defaultConfigFileName = "stkd.conf"
	defaultLogDirname     = "logs"
	defaultAdmin          = "admin"
)

var (
	// DefaultStkdDir specifies the default home directory for the ledger:
	//   C:\Users\<username>\AppData\Local\ on Windows
	//   ~/.stkd on Linux
	//   ~/Library/Application Support/Stkd on MacOS
	DefaultStkdDir = btcutil.AppDataDir("stkd", false)
)

type Config struct {
	LogLevel  string `long:"loglevel" description:"Logging level for all subsystems" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`
	LogFormat string `long:"logformat" description:"Format of the log output" choice:"console" choice:"json" choice:"logfmt"`
	Admin     string `long:"admin" description:"The account holding the administrator capability when the ledger is first initialized"`

	Pool *PoolConfig `group:"pool" namespace:"pool"`

	Store *StoreConfig `group:"store" namespace:"store"`
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Load configuration file overwriting defaults with any specified options
//  3. Validate the result
func LoadConfig(homePath string) (*Config, error) {
	// The home directory is required to have a configuration file with a specific name
	// under it.
	cfgFile := ConfigFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	// If there are issues parsing the config file, return an error
	cfg := DefaultConfigWithHomePath(homePath)
	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(cfgFile)
	if err != nil {
		return nil, err
	}

	// Make sure everything we just loaded makes sense.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate check the given configuration to be sane. This makes sure no
// illegal values or combination of values are set. All file system paths are
// normalized.
func (cfg *Config) Validate() error {
	if cfg.Admin == "" {
		return fmt.Errorf("empty administrator")
	}

	if cfg.Pool == nil {
		return fmt.Errorf("empty pool config")
	}

	if err := cfg.Pool.Validate(); err != nil {
		return fmt.Errorf("invalid pool config: %w", err)
	}

	if cfg.Store == nil {
		return fmt.Errorf("empty store config")
	}

	if err := cfg.Store.Validate(); err != nil {
		return fmt.Errorf("invalid store config: %w", err)
	}

	cfg.Store.DBDir = util.CleanAndExpandPath(cfg.Store.DBDir)

	return nil
}

func ConfigFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func DefaultConfigWithHomePath(homePath string) Config {
	poolCfg := DefaultPoolConfig()
	storeCfg := DefaultStoreConfigWithHomePath(homePath)
	cfg := Config{
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Admin:     defaultAdmin,
		Pool:      &poolCfg,
		Store:     &storeCfg,
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return cfg
}

func DefaultConfig() Config {
	return DefaultConfigWithHomePath(DefaultStkdDir)
}

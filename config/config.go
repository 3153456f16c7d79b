/*
Package config provides configuration of the token ledger application.

Configuration is a YAML document:

	Token:
	  Name: Emorya Finance
	  Symbol: EMR
	  Decimals: 9
	Storage:
	  Type: leveldb
	  LevelDBOptions:
	    DataDirectoryPath: ./chain
	Logger:
	  Level: info
	  Encoding: console

Storage section follows neo-go database configuration. Omitted fields keep
their default values, see Default.
*/
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/token-ledger/ledger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Token   Token                    `yaml:"Token"`
	Storage dbconfig.DBConfiguration `yaml:"Storage"`
	Logger  Logger                   `yaml:"Logger"`
}

// Token holds immutable token info.
type Token struct {
	Name     string `yaml:"Name"`
	Symbol   string `yaml:"Symbol"`
	Decimals uint8  `yaml:"Decimals"`
}

// Logger configures application logs.
type Logger struct {
	// One of zap levels: debug, info, warn, error.
	Level string `yaml:"Level"`
	// console or json.
	Encoding string `yaml:"Encoding"`
}

// Default returns configuration of the in-memory Emorya Finance token.
func Default() Config {
	return Config{
		Token: Token{
			Name:     "Emorya Finance",
			Symbol:   "EMR",
			Decimals: 9,
		},
		Storage: dbconfig.DBConfiguration{
			Type: dbconfig.InMemoryDB,
		},
		Logger: Logger{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads configuration from the YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration on top of Default and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	switch {
	case c.Token.Name == "":
		return errors.New("empty token name")
	case c.Token.Symbol == "":
		return errors.New("empty token symbol")
	}

	switch c.Storage.Type {
	case dbconfig.InMemoryDB:
	case dbconfig.LevelDB:
		if c.Storage.LevelDBOptions.DataDirectoryPath == "" {
			return errors.New("missing LevelDB data directory path")
		}
	case dbconfig.BoltDB:
		if c.Storage.BoltDBOptions.FilePath == "" {
			return errors.New("missing BoltDB file path")
		}
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}

	if _, err := c.Logger.level(); err != nil {
		return err
	}

	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log encoding %q", c.Logger.Encoding)
	}

	return nil
}

// Ledger returns token config for the ledger.
func (c Config) Ledger() ledger.Config {
	return ledger.Config{
		Name:     c.Token.Name,
		Symbol:   c.Token.Symbol,
		Decimals: c.Token.Decimals,
	}
}

func (l Logger) level() (zapcore.Level, error) {
	var lvl zapcore.Level

	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("log level: %w", err)
	}

	return lvl, nil
}

// Build constructs zap logger writing to stderr.
func (l Logger) Build() (*zap.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, err
	}

	cc := zap.NewProductionConfig()
	cc.Level = zap.NewAtomicLevelAt(lvl)
	cc.Encoding = l.Encoding
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.Sampling = nil
	cc.OutputPaths = []string{"stderr"}

	if l.Encoding == "console" {
		cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return cc.Build()
}

package main

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/token-ledger/config"
	"github.com/nspcc-dev/token-ledger/host"
	"github.com/nspcc-dev/token-ledger/notify"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "Path to the YAML configuration file, in-memory EMR token is used if omitted",
	}
	callerFlag = cli.StringFlag{
		Name:   "caller",
		Usage:  "Neo address or LE hex script hash of the calling account",
		EnvVar: "TOKEN_CALLER",
	}
)

type env struct {
	cfg  config.Config
	log  *zap.Logger
	host *host.Host
}

// withHost opens the token host configured by the global flags, runs f and
// releases all resources.
func withHost(ctx *cli.Context, f func(e *env) error) error {
	cfg := config.Default()

	if p := ctx.GlobalString("config"); p != "" {
		var err error

		cfg, err = config.Load(p)
		if err != nil {
			return err
		}
	}

	log, err := cfg.Logger.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	st, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Type, err)
	}

	h, err := host.New(host.Prm{
		Logger: log,
		Token:  cfg.Ledger(),
		Store:  st,
		Events: notify.NewLogger(log),
	})
	if err != nil {
		_ = st.Close()
		return err
	}

	defer func() {
		if err := h.Close(); err != nil {
			log.Warn("failed to close storage", zap.Error(err))
		}
	}()

	return f(&env{cfg: cfg, log: log, host: h})
}

func requireArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return fmt.Errorf("expected %d argument(s), got %d, see '%s %s --help'",
			n, ctx.NArg(), ctx.App.Name, ctx.Command.Name)
	}
	return nil
}

func parseAddress(s string) (util.Uint160, error) {
	res, err := address.StringToUint160(s)
	if err == nil {
		return res, nil
	}

	res, errHex := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if errHex != nil {
		return res, fmt.Errorf("invalid account '%s': neither Neo address (%v) nor LE hex (%v)", s, err, errHex)
	}

	return res, nil
}

func parseAmount(s string) (*uint256.Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount '%s': decimal integer expected", s)
	}

	if b.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount '%s': negative", s)
	}

	res, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("invalid amount '%s': exceeds 256 bits", s)
	}

	return res, nil
}

func callerFrom(ctx *cli.Context) (util.Uint160, error) {
	s := ctx.String(callerFlag.Name)
	if s == "" {
		return util.Uint160{}, errors.New("missing caller account, use --caller flag or TOKEN_CALLER env")
	}

	return parseAddress(s)
}

func printf(ctx *cli.Context, format string, a ...any) {
	fmt.Fprintf(ctx.App.Writer, format, a...)
}

package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/token-ledger/dump"
	"github.com/nspcc-dev/token-ledger/host"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	deployCommand = cli.Command{
		Name:   "deploy",
		Usage:  "Initialize the token and make the caller its owner",
		Flags:  []cli.Flag{callerFlag},
		Action: deployAction,
	}
	infoCommand = cli.Command{
		Name:   "info",
		Usage:  "Print public token state",
		Action: infoAction,
	}
	supplyCommand = cli.Command{
		Name:   "supply",
		Usage:  "Print total supply",
		Action: supplyAction,
	}
	balanceCommand = cli.Command{
		Name:      "balance",
		Usage:     "Print balance of the account",
		ArgsUsage: "<account>",
		Action:    balanceAction,
	}
	ownerCommand = cli.Command{
		Name:   "owner",
		Usage:  "Print current token owner",
		Action: ownerAction,
	}
	holdersCommand = cli.Command{
		Name:   "holders",
		Usage:  "Print all accounts with non-zero balance",
		Action: holdersAction,
	}
	transferCommand = cli.Command{
		Name:      "transfer",
		Usage:     "Move caller's tokens to another account",
		ArgsUsage: "<to> <amount>",
		Flags:     []cli.Flag{callerFlag},
		Action:    transferAction,
	}
	mintCommand = cli.Command{
		Name:      "mint",
		Usage:     "Create new tokens on the account (owner only)",
		ArgsUsage: "<to> <amount>",
		Flags:     []cli.Flag{callerFlag},
		Action:    mintAction,
	}
	burnCommand = cli.Command{
		Name:      "burn",
		Usage:     "Destroy caller's tokens (owner only)",
		ArgsUsage: "<amount>",
		Flags:     []cli.Flag{callerFlag},
		Action:    burnAction,
	}
	transferOwnershipCommand = cli.Command{
		Name:      "transfer-ownership",
		Usage:     "Hand the token over to another owner (owner only)",
		ArgsUsage: "<new owner>",
		Flags:     []cli.Flag{callerFlag},
		Action:    transferOwnershipAction,
	}
	verifyCommand = cli.Command{
		Name:   "verify",
		Usage:  "Check that balances sum up to the total supply",
		Action: verifyAction,
	}
	dumpCommand = cli.Command{
		Name:      "dump",
		Usage:     "Save token state into the directory",
		ArgsUsage: "<dir> <label>",
		Action:    dumpAction,
	}
	restoreCommand = cli.Command{
		Name:      "restore",
		Usage:     "Load token state from the directory into empty storage",
		ArgsUsage: "<dir> <label>",
		Action:    restoreAction,
	}
)

func deployAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 0); err != nil {
		return err
	}

	caller, err := callerFrom(ctx)
	if err != nil {
		return err
	}

	return withHost(ctx, func(e *env) error {
		return e.host.Deploy(caller)
	})
}

func infoAction(ctx *cli.Context) error {
	return withHost(ctx, func(e *env) error {
		info, err := e.host.Info()
		if err != nil {
			return err
		}

		printf(ctx, "Name:         %s\n", info.Name)
		printf(ctx, "Symbol:       %s\n", info.Symbol)
		printf(ctx, "Decimals:     %d\n", info.Decimals)
		printf(ctx, "Owner:        %s\n", address.Uint160ToString(info.Owner))
		printf(ctx, "Total supply: %s\n", info.TotalSupply.ToBig())

		return nil
	})
}

func supplyAction(ctx *cli.Context) error {
	return withHost(ctx, func(e *env) error {
		s, err := e.host.TotalSupply()
		if err != nil {
			return err
		}

		printf(ctx, "%s\n", s.ToBig())

		return nil
	})
}

func balanceAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}

	acc, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	return withHost(ctx, func(e *env) error {
		b, err := e.host.BalanceOf(acc)
		if err != nil {
			return err
		}

		printf(ctx, "%s\n", b.ToBig())

		return nil
	})
}

func ownerAction(ctx *cli.Context) error {
	return withHost(ctx, func(e *env) error {
		o, err := e.host.Owner()
		if err != nil {
			return err
		}

		printf(ctx, "%s\n", address.Uint160ToString(o))

		return nil
	})
}

func holdersAction(ctx *cli.Context) error {
	return withHost(ctx, func(e *env) error {
		return e.host.IterateHolders(func(acc util.Uint160, balance *uint256.Int) bool {
			printf(ctx, "%s %s\n", address.Uint160ToString(acc), balance.ToBig())
			return true
		})
	})
}

func transferAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}

	caller, err := callerFrom(ctx)
	if err != nil {
		return err
	}

	to, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	amount, err := parseAmount(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	return withHost(ctx, func(e *env) error {
		_, err := e.host.Transfer(caller, to, amount)
		return err
	})
}

func mintAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}

	caller, err := callerFrom(ctx)
	if err != nil {
		return err
	}

	to, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	amount, err := parseAmount(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	return withHost(ctx, func(e *env) error {
		return e.host.Mint(caller, to, amount)
	})
}

func burnAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}

	caller, err := callerFrom(ctx)
	if err != nil {
		return err
	}

	amount, err := parseAmount(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	return withHost(ctx, func(e *env) error {
		return e.host.Burn(caller, amount)
	})
}

func transferOwnershipAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}

	caller, err := callerFrom(ctx)
	if err != nil {
		return err
	}

	newOwner, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	return withHost(ctx, func(e *env) error {
		return e.host.TransferOwnership(caller, newOwner)
	})
}

func verifyAction(ctx *cli.Context) error {
	return withHost(ctx, func(e *env) error {
		if err := e.host.Verify(); err != nil {
			return err
		}

		printf(ctx, "OK\n")

		return nil
	})
}

func dumpAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}

	dir, label := ctx.Args().Get(0), ctx.Args().Get(1)

	return withHost(ctx, func(e *env) error {
		info, err := e.host.Info()
		if err != nil {
			return err
		}

		d, err := dump.NewCreator(dir, label)
		if err != nil {
			return fmt.Errorf("init dump: %w", err)
		}

		defer d.Close()

		d.SetToken(dump.Token{
			Name:        info.Name,
			Symbol:      info.Symbol,
			Decimals:    info.Decimals,
			Owner:       info.Owner,
			TotalSupply: info.TotalSupply.ToBig().String(),
		})

		err = e.host.IterateStorage(d.Write)
		if err != nil {
			return fmt.Errorf("dump storage: %w", err)
		}

		err = d.Flush()
		if err != nil {
			return fmt.Errorf("flush dump: %w", err)
		}

		e.log.Info("token state dumped", zap.String("dir", dir), zap.String("label", label))

		return nil
	})
}

func restoreAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 2); err != nil {
		return err
	}

	dir, label := ctx.Args().Get(0), ctx.Args().Get(1)

	r, err := dump.Open(dir, label)
	if err != nil {
		return err
	}

	return withHost(ctx, func(e *env) error {
		t := r.Token()
		if t.Name != e.cfg.Token.Name || t.Symbol != e.cfg.Token.Symbol || t.Decimals != e.cfg.Token.Decimals {
			return fmt.Errorf("dump of %s (%s, %d decimals) does not match configured %s (%s, %d decimals)",
				t.Name, t.Symbol, t.Decimals, e.cfg.Token.Name, e.cfg.Token.Symbol, e.cfg.Token.Decimals)
		}

		err := e.host.Restore(r.IterateStorage, func(info host.Info) error {
			if !info.Owner.Equals(t.Owner) {
				return fmt.Errorf("restored owner %s differs from dump owner %s",
					address.Uint160ToString(info.Owner), address.Uint160ToString(t.Owner))
			}

			if supply := info.TotalSupply.ToBig().String(); supply != t.TotalSupply {
				return fmt.Errorf("restored total supply %s differs from dump total supply %s", supply, t.TotalSupply)
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("restore storage: %w", err)
		}

		e.log.Info("token state restored", zap.String("dir", dir), zap.String("label", label))

		return nil
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/govern/cmd/govern/common"
	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/ledger"
)

var flagAsset string = ledger.AssetToken

func init() {
	balanceCmd := &cobra.Command{
		Use:   "balance [address...]",
		Short: "Print token and coin balances; every known account without arguments",
		Run: func(c *cobra.Command, args []string) {
			var addresses []common.Address
			for _, arg := range args {
				address, err := common.ParseAddress(arg)
				if err != nil {
					cmdcommon.PrintFlagsError(c, "<address>", err)
				}
				addresses = append(addresses, address)
			}

			run(c, func() (interface{}, error) {
				return Balances(flagStorage, addresses)
			})
		},
	}

	fundCmd := &cobra.Command{
		Use:   "fund <amount>",
		Short: "Move coins of the caller into the treasury",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			from, err := parseFrom()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--from", err)
			}
			amount, err := common.ParseAmount(args[0])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<amount>", err)
			}

			run(c, func() (interface{}, error) {
				return Fund(flagStorage, from, amount)
			})
		},
	}
	addFromFlag(fundCmd)

	transferCmd := &cobra.Command{
		Use:   "transfer <receiver> <amount>",
		Short: "Send tokens or coins of the caller to <receiver>",
		Args:  cobra.ExactArgs(2),
		Run: func(c *cobra.Command, args []string) {
			from, err := parseFrom()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--from", err)
			}
			to, err := common.ParseAddress(args[0])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<receiver>", err)
			}
			amount, err := common.ParseAmount(args[1])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<amount>", err)
			}
			if flagAsset != ledger.AssetToken && flagAsset != ledger.AssetCoin {
				cmdcommon.PrintFlagsError(c, "--asset", fmt.Errorf("unknown asset %q", flagAsset))
			}

			run(c, func() (interface{}, error) {
				return Transfer(flagStorage, flagAsset, from, to, amount)
			})
		},
	}
	addFromFlag(transferCmd)
	transferCmd.Flags().StringVar(&flagAsset, "asset", flagAsset, "asset to send, {token, coin}")

	rootCmd.AddCommand(balanceCmd, fundCmd, transferCmd)
}

// Balances returns the balances of `addresses`, or of every account either
// ledger knows, tokens holders first.
func Balances(uri string, addresses []common.Address) ([]BalanceView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if len(addresses) < 1 {
		seen := map[common.Address]bool{}
		for _, l := range []*ledger.Ledger{s.token, s.coin} {
			accounts, err := l.Accounts()
			if err != nil {
				return nil, err
			}
			for _, a := range accounts {
				if !seen[a.Address] {
					seen[a.Address] = true
					addresses = append(addresses, a.Address)
				}
			}
		}
	}

	views := []BalanceView{}
	for _, address := range addresses {
		view, err := s.balanceView(address)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func Fund(uri string, from common.Address, amount common.Amount) (*TreasuryView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err = s.treasury.Fund(from, amount); err != nil {
		return nil, err
	}

	view, err := s.treasuryView()
	if err != nil {
		return nil, err
	}

	return &view, nil
}

func Transfer(uri, asset string, from, to common.Address, amount common.Amount) ([]BalanceView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	l := s.token
	if asset == ledger.AssetCoin {
		l = s.coin
	}

	if err = l.Transfer(from, to, amount); err != nil {
		return nil, err
	}

	var views []BalanceView
	for _, address := range []common.Address{from, to} {
		view, err := s.balanceView(address)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

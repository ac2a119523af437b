package cmd

import (
	"io/ioutil"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	cmdcommon "boscoin.io/govern/cmd/govern/common"
	"boscoin.io/govern/lib/common"
	governerrors "boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/governance"
	"boscoin.io/govern/lib/ledger"
)

var (
	flagQuorum       string        = env.Quorum
	flagVotingPeriod time.Duration = env.VotingPeriod
)

// GenesisFile is the YAML document given to `genesis`:
//
//	treasury: treasury
//	tokens:
//	  investor-0: 200000tokens
//	coins:
//	  treasury: 100tokens
//	governance:
//	  quorum: 500000tokens
//	  voting_period: 72h
//
// Keys are addresses or names; amounts are base units or "<n>tokens".
type GenesisFile struct {
	Treasury   string                   `yaml:"treasury"`
	Tokens     map[string]common.Amount `yaml:"tokens"`
	Coins      map[string]common.Amount `yaml:"coins"`
	Governance governance.Config        `yaml:"governance"`
}

func init() {
	genesisCmd := &cobra.Command{
		Use:   "genesis <genesis file>",
		Short: "Mint the initial balances and fix the governance config",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			defaults, flagName, err := parseGovernanceFlags()
			if err != nil {
				cmdcommon.PrintFlagsError(c, flagName, err)
			}

			genesis, err := ReadGenesisFile(args[0], defaults)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<genesis file>", err)
			}

			run(c, func() (interface{}, error) {
				return MakeGenesis(flagStorage, genesis)
			})
		},
	}

	genesisCmd.Flags().StringVar(&flagQuorum, "quorum", flagQuorum, "quorum when the genesis file does not set one, base units or '<n>tokens'")
	genesisCmd.Flags().DurationVar(&flagVotingPeriod, "voting-period", flagVotingPeriod, "voting period when the genesis file does not set one")

	rootCmd.AddCommand(genesisCmd)
}

func parseGovernanceFlags() (config governance.Config, flagName string, err error) {
	config = governance.NewDefaultConfig()

	if len(flagQuorum) > 0 {
		if config.Quorum, err = common.ParseAmount(flagQuorum); err != nil {
			return config, "--quorum", err
		}
	}
	if flagVotingPeriod != 0 {
		config.VotingPeriod = flagVotingPeriod
	}

	if err = config.Validate(); err != nil {
		if governerrors.Code(err) == governerrors.InvalidQuorum.Code {
			flagName = "--quorum"
		} else {
			flagName = "--voting-period"
		}
	}

	return
}

// ReadGenesisFile loads `path`; governance values missing from the file are
// taken from `defaults`.
func ReadGenesisFile(path string, defaults governance.Config) (*GenesisFile, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read genesis file %q", path)
	}

	genesis := &GenesisFile{Governance: defaults}
	if err = yaml.UnmarshalStrict(b, genesis); err != nil {
		return nil, errors.Wrapf(err, "failed to parse genesis file %q", path)
	}

	if len(genesis.Treasury) < 1 {
		return nil, errors.Errorf("genesis file %q has no treasury", path)
	}

	return genesis, nil
}

type allocation struct {
	address common.Address
	amount  common.Amount
}

func parseAllocations(m map[string]common.Amount) ([]allocation, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var allocations []allocation
	for _, k := range keys {
		address, err := common.ParseAddress(k)
		if err != nil {
			return nil, errors.Wrapf(err, "bad allocation %q", k)
		}
		if m[k].IsZero() {
			return nil, errors.Wrapf(governerrors.InvalidAmount.Clone().SetData("amount", "0"), "bad allocation %q", k)
		}
		allocations = append(allocations, allocation{address: address, amount: m[k]})
	}

	return allocations, nil
}

// MakeGenesis mints the allocations of `genesis` into the storage at `uri`
// and saves the governance config. It refuses a storage which already went
// through genesis. Everything is written in one transaction; a failed genesis
// leaves the storage untouched.
func MakeGenesis(uri string, genesis *GenesisFile) (record *GenesisRecord, err error) {
	treasury, err := common.ParseAddress(genesis.Treasury)
	if err != nil {
		return nil, errors.Wrap(err, "bad treasury address")
	}

	tokens, err := parseAllocations(genesis.Tokens)
	if err != nil {
		return nil, err
	}
	coins, err := parseAllocations(genesis.Coins)
	if err != nil {
		return nil, err
	}

	st, err := openStorage(uri)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if exists, err := st.Has(genesisKey); err != nil {
		return nil, err
	} else if exists {
		return nil, governerrors.GenesisAlreadyApplied
	}

	ts, err := st.OpenTransaction()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			ts.Discard()
		}
	}()

	if err = governance.SaveConfig(ts, genesis.Governance); err != nil {
		return nil, err
	}

	token := ledger.NewLedger(ts, ledger.AssetToken)
	coin := ledger.NewLedger(ts, ledger.AssetCoin)

	for _, a := range tokens {
		if err = token.Mint(a.address, a.amount); err != nil {
			return nil, errors.Wrapf(err, "failed to mint tokens for %s", a.address.Hex())
		}
	}
	for _, a := range coins {
		if err = coin.Mint(a.address, a.amount); err != nil {
			return nil, errors.Wrapf(err, "failed to mint coins for %s", a.address.Hex())
		}
	}

	record = &GenesisRecord{
		Treasury:  treasury,
		Config:    genesis.Governance,
		AppliedAt: clock.Now().UTC(),
	}
	if record.TokenSupply, err = token.TotalSupply(); err != nil {
		return nil, err
	}
	if record.CoinSupply, err = coin.TotalSupply(); err != nil {
		return nil, err
	}

	if err = ts.New(genesisKey, record); err != nil {
		return nil, err
	}
	if err = ts.Commit(); err != nil {
		return nil, err
	}

	log.Info(
		"genesis applied",
		"treasury", treasury,
		"token-supply", record.TokenSupply.FormatTokens(),
		"coin-supply", record.CoinSupply.FormatTokens(),
		"quorum", record.Config.Quorum,
		"voting-period", record.Config.VotingPeriod,
	)

	return record, nil
}

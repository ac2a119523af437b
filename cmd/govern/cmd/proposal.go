package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/govern/cmd/govern/common"
	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/governance"
)

var (
	flagFrom  string = env.From
	flagVoter string
	flagVotes bool
)

func addFromFlag(c *cobra.Command) {
	c.Flags().StringVar(&flagFrom, "from", flagFrom, "address or name of the caller")
}

func parseFrom() (common.Address, error) {
	if len(flagFrom) < 1 {
		return common.ZeroAddress, errors.InvalidAddress.Clone().SetData("reason", "--from is required")
	}

	return common.ParseAddress(flagFrom)
}

func parseProposalID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.ProposalNotFound.Clone().SetData("id", s)
	}

	return id, nil
}

func parseVoter() (*common.Address, error) {
	if len(flagVoter) < 1 {
		return nil, nil
	}

	voter, err := common.ParseAddress(flagVoter)
	if err != nil {
		return nil, err
	}

	return &voter, nil
}

func init() {
	proposeCmd := &cobra.Command{
		Use:   "propose <name> <amount> <recipient>",
		Short: "Ask the treasury to pay <amount> to <recipient>",
		Args:  cobra.ExactArgs(3),
		Run: func(c *cobra.Command, args []string) {
			from, err := parseFrom()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--from", err)
			}
			amount, err := common.ParseAmount(args[1])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<amount>", err)
			}
			recipient, err := common.ParseAddress(args[2])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<recipient>", err)
			}

			run(c, func() (interface{}, error) {
				return Propose(flagStorage, from, args[0], amount, recipient)
			})
		},
	}
	addFromFlag(proposeCmd)

	voteCmd := &cobra.Command{
		Use:   "vote <proposal id> <for|against|abstain>",
		Short: "Vote on a proposal with the whole token balance of the caller",
		Args:  cobra.ExactArgs(2),
		Run: func(c *cobra.Command, args []string) {
			from, err := parseFrom()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--from", err)
			}
			id, err := parseProposalID(args[0])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<proposal id>", err)
			}
			voteType, err := governance.ParseVoteType(args[1])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<vote type>", err)
			}

			run(c, func() (interface{}, error) {
				return Vote(flagStorage, from, id, voteType)
			})
		},
	}
	addFromFlag(voteCmd)

	finalizeCmd := &cobra.Command{
		Use:   "finalize <proposal id>",
		Short: "Pay a proposal out once its \"for\" votes reach the quorum",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			from, err := parseFrom()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--from", err)
			}
			id, err := parseProposalID(args[0])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<proposal id>", err)
			}

			run(c, func() (interface{}, error) {
				return Finalize(flagStorage, from, id)
			})
		},
	}
	addFromFlag(finalizeCmd)

	proposalCmd := &cobra.Command{
		Use:   "proposal",
		Short: "Inspect proposals",
		Run: func(c *cobra.Command, args []string) {
			if len(args) < 1 {
				c.Usage()
			}
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <proposal id>",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			id, err := parseProposalID(args[0])
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<proposal id>", err)
			}
			voter, err := parseVoter()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--voter", err)
			}

			run(c, func() (interface{}, error) {
				return ShowProposal(flagStorage, id, voter, flagVotes)
			})
		},
	}
	showCmd.Flags().StringVar(&flagVoter, "voter", flagVoter, "tell whether this address voted")
	showCmd.Flags().BoolVar(&flagVotes, "votes", flagVotes, "include the vote records")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every proposal",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			voter, err := parseVoter()
			if err != nil {
				cmdcommon.PrintFlagsError(c, "--voter", err)
			}

			run(c, func() (interface{}, error) {
				return ListProposals(flagStorage, voter)
			})
		},
	}
	listCmd.Flags().StringVar(&flagVoter, "voter", flagVoter, "tell whether this address voted")

	proposalCmd.AddCommand(showCmd, listCmd)
	rootCmd.AddCommand(proposeCmd, voteCmd, finalizeCmd, proposalCmd)
}

func Propose(uri string, from common.Address, name string, amount common.Amount, recipient common.Address) (*ProposalView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	p, err := s.engine.CreateProposal(from, name, amount, recipient)
	if err != nil {
		return nil, err
	}

	return s.proposalView(p, nil, false)
}

func Vote(uri string, from common.Address, id uint64, voteType governance.VoteType) (*ProposalView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	p, err := s.engine.Vote(from, id, voteType)
	if err != nil {
		return nil, err
	}

	return s.proposalView(p, &from, false)
}

func Finalize(uri string, from common.Address, id uint64) (*ProposalView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	p, err := s.engine.FinalizeProposal(from, id)
	if err != nil {
		return nil, err
	}

	return s.proposalView(p, nil, false)
}

func ShowProposal(uri string, id uint64, voter *common.Address, withVotes bool) (*ProposalView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	p, err := s.engine.GetProposal(id)
	if err != nil {
		return nil, err
	}

	return s.proposalView(p, voter, withVotes)
}

func ListProposals(uri string, voter *common.Address) ([]*ProposalView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	proposals, err := s.engine.ListProposals()
	if err != nil {
		return nil, err
	}

	views := []*ProposalView{}
	for _, p := range proposals {
		view, err := s.proposalView(p, voter, false)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/govern/cmd/govern/common"
	"boscoin.io/govern/lib/governance"
)

var (
	flagCursor uint64
	flagLimit  uint64
	flagKinds  cmdcommon.ListFlags
	flagVerify bool
)

// EventsView is the output of `events`. `Verified` is only set with
// `--verify`.
type EventsView struct {
	Count    uint64              `json:"count"`
	Verified *bool               `json:"verified,omitempty"`
	Events   []*governance.Event `json:"events"`
}

func init() {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Print the governance event log",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			for _, kind := range flagKinds {
				switch governance.EventKind(kind) {
				case governance.EventProposed, governance.EventVoted, governance.EventFinalized:
				default:
					cmdcommon.PrintFlagsError(c, "--kind", fmt.Errorf("unknown event kind %q", kind))
				}
			}

			run(c, func() (interface{}, error) {
				return Events(flagStorage, flagCursor, flagLimit, flagKinds, flagVerify)
			})
		},
	}

	eventsCmd.Flags().Uint64Var(&flagCursor, "cursor", flagCursor, "print events after this sequence")
	eventsCmd.Flags().Uint64Var(&flagLimit, "limit", flagLimit, "print at most this many events, 0 for all")
	eventsCmd.Flags().Var(&flagKinds, "kind", "only print this kind of event, {proposed, voted, finalized}; repeatable")
	eventsCmd.Flags().BoolVar(&flagVerify, "verify", flagVerify, "check the hash chain of the whole log")

	rootCmd.AddCommand(eventsCmd)
}

func Events(uri string, cursor, limit uint64, kinds []string, verify bool) (*EventsView, error) {
	s, err := openState(uri)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	view := &EventsView{Events: []*governance.Event{}}
	if view.Count, err = s.engine.EventCount(); err != nil {
		return nil, err
	}

	if verify {
		verified := true
		if err = s.engine.VerifyEvents(); err != nil {
			log.Error("event log verification failed", "error", err)
			verified = false
		}
		view.Verified = &verified
	}

	events, err := s.engine.Events(cursor, limit)
	if err != nil {
		return nil, err
	}

	wanted := map[governance.EventKind]bool{}
	for _, kind := range kinds {
		wanted[governance.EventKind(kind)] = true
	}
	for _, e := range events {
		if len(wanted) > 0 && !wanted[e.Kind] {
			continue
		}
		view.Events = append(view.Events, e)
	}

	return view, nil
}

package observer

import (
	"fmt"
	"strings"

	"github.com/GianlucaGuarini/go-observable"
)

var GovernanceObserver = observable.New()
var LedgerObserver = observable.New()

const (
	ResourceProposal = "proposal"
	ResourceAccount  = "account"
	ConditionAll     = "*"

	EventProposed  = "proposed"
	EventVoted     = "voted"
	EventFinalized = "finalized"
	EventMinted    = "minted"
	EventTransfer  = "transfer"
)

// Event names a subscription target, eg. "proposal-*" or "proposal=3".
type Event struct {
	Resource string `json:"resource"`
	Id       string `json:"id"`
}

func NewEvent(resource, id string) Event {
	return Event{
		Resource: resource,
		Id:       id,
	}
}

func (e Event) String() string {
	if e.Id == ConditionAll || len(e.Id) < 1 {
		return e.Resource + "-" + ConditionAll
	}

	return e.Resource + "=" + e.Id
}

func ProposalEvent(id uint64) string {
	return NewEvent(ResourceProposal, fmt.Sprintf("%d", id)).String()
}

func AccountEvent(address string) string {
	return NewEvent(ResourceAccount, address).String()
}

// Names joins event names the way `observable.Trigger` expects them, so one
// trigger reaches every listed subscriber.
func Names(names ...string) string {
	return strings.Join(names, " ")
}

package governance

import (
	"encoding/hex"
	"time"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
)

type EventKind string

const (
	EventProposed  EventKind = "proposed"
	EventVoted     EventKind = "voted"
	EventFinalized EventKind = "finalized"
)

// Event is one entry of the append-only governance log. Every accepted
// command appends exactly one event; `Hash` chains it to the previous one.
type Event struct {
	Seq        uint64         `json:"seq"`
	ID         string         `json:"id"`
	Kind       EventKind      `json:"kind"`
	ProposalID uint64         `json:"proposal_id"`
	Amount     common.Amount  `json:"amount"`
	Recipient  common.Address `json:"recipient"`
	Creator    common.Address `json:"creator"`
	Voter      common.Address `json:"voter"`
	VoteType   VoteType       `json:"vote_type"`
	Weight     common.Amount  `json:"weight"`
	Time       time.Time      `json:"time"`
	PrevHash   string         `json:"prev_hash"`
	Hash       string         `json:"hash"`
}

// eventBody is the RLP encoded form the hash is computed over.
type eventBody struct {
	PrevHash   []byte
	Seq        uint64
	ID         string
	Kind       string
	ProposalID uint64
	Amount     common.Amount
	Recipient  common.Address
	Creator    common.Address
	Voter      common.Address
	VoteType   uint8
	Weight     common.Amount
	Time       string
}

func (e *Event) body() (eventBody, error) {
	prev, err := hex.DecodeString(e.PrevHash)
	if err != nil {
		return eventBody{}, err
	}

	return eventBody{
		PrevHash:   prev,
		Seq:        e.Seq,
		ID:         e.ID,
		Kind:       string(e.Kind),
		ProposalID: e.ProposalID,
		Amount:     e.Amount,
		Recipient:  e.Recipient,
		Creator:    e.Creator,
		Voter:      e.Voter,
		VoteType:   uint8(e.VoteType),
		Weight:     e.Weight,
		Time:       common.FormatISO8601(e.Time),
	}, nil
}

func (e *Event) makeHash() (string, error) {
	b, err := e.body()
	if err != nil {
		return "", err
	}

	return common.MakeObjectHashString(b)
}

// seal links the event to `prevHash` and computes its own hash.
func (e *Event) seal(prevHash string) (err error) {
	e.PrevHash = prevHash
	e.Hash, err = e.makeHash()
	return
}

func (e *Event) String() string {
	return string(common.MustMarshalJSON(e))
}

// VerifyEventChain checks that `events` are consecutive, each one linked to
// the previous one and carrying the hash of its own content. `prevHash` is
// the hash of the event right before the first one, empty for seq 1.
func VerifyEventChain(prevHash string, events []*Event) error {
	for i, e := range events {
		if i > 0 && e.Seq != events[i-1].Seq+1 {
			return errors.InvalidEventChain.Clone().SetData("seq", e.Seq)
		}
		if e.PrevHash != prevHash {
			return errors.InvalidEventChain.Clone().SetData("seq", e.Seq).SetData("reason", "broken link")
		}

		h, err := e.makeHash()
		if err != nil {
			return errors.InvalidEventChain.Wrap(err)
		}
		if h != e.Hash {
			return errors.InvalidEventChain.Clone().SetData("seq", e.Seq).SetData("reason", "hash mismatch")
		}

		prevHash = e.Hash
	}

	return nil
}

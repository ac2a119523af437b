package governance

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
	"boscoin.io/govern/lib/storage"
)

// Store keeps proposals, vote records and the event log in leveldb.
//
// Models:
//
//   - proposals: 'gp-id-<%020d id>' holds a `Proposal`, 'gp-count' the
//     number of proposals
//   - votes: 'gv-<%020d proposal id>-<voter>' holds a `VoteRecord`
//   - events: 'ge-id-<%020d seq>' holds an `Event`, 'ge-count' the number
//     of events
//
// Reads go straight to the database, proposals through an lru cache.
// Writes only happen through a `StoreTx`.
type Store struct {
	st    *storage.LevelDBBackend
	cache *lru.Cache
}

const (
	ProposalPrefix   = "gp-id-"
	ProposalCountKey = "gp-count"
	VotePrefix       = "gv-"
	EventPrefix      = "ge-id-"
	EventCountKey    = "ge-count"
)

func GetProposalKey(id uint64) string {
	return fmt.Sprintf("%s%020d", ProposalPrefix, id)
}

func GetVotePrefix(id uint64) string {
	return fmt.Sprintf("%s%020d-", VotePrefix, id)
}

func GetVoteKey(id uint64, voter common.Address) string {
	return GetVotePrefix(id) + voter.Hex()
}

func GetEventKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", EventPrefix, seq)
}

// NewStore wraps `st`; `cacheSize` of 0 disables the proposal cache.
func NewStore(st *storage.LevelDBBackend, cacheSize int) (*Store, error) {
	s := &Store{st: st}

	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			return nil, errors.InvalidConfig.Wrap(err)
		}
		s.cache = cache
	}

	return s, nil
}

func getCount(st *storage.LevelDBBackend, key string) (count uint64, err error) {
	if err = st.Get(key, &count); err == errors.StorageRecordDoesNotExist {
		err = nil
	}

	return
}

func getProposal(st *storage.LevelDBBackend, id uint64) (p *Proposal, err error) {
	if err = st.Get(GetProposalKey(id), &p); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.ProposalNotFound.Clone().SetData("id", id)
		}
		return
	}

	return
}

func getEvent(st *storage.LevelDBBackend, seq uint64) (e *Event, err error) {
	err = st.Get(GetEventKey(seq), &e)
	return
}

func (s *Store) ProposalCount() (uint64, error) {
	return getCount(s.st, ProposalCountKey)
}

// GetProposal returns a copy; changing it does not change the store.
func (s *Store) GetProposal(id uint64) (*Proposal, error) {
	if s.cache != nil {
		if v, found := s.cache.Get(id); found {
			return v.(*Proposal).Clone(), nil
		}
	}

	p, err := getProposal(s.st, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(id, p.Clone())
	}

	return p, nil
}

// ListProposals returns every proposal in id order.
func (s *Store) ListProposals() (proposals []*Proposal, err error) {
	err = s.st.Walk(ProposalPrefix, nil, func(key, value []byte) (bool, error) {
		var p Proposal
		common.MustUnmarshalJSON(value, &p)
		proposals = append(proposals, &p)
		return true, nil
	})

	return
}

func (s *Store) HasVoted(id uint64, voter common.Address) (bool, error) {
	return s.st.Has(GetVoteKey(id, voter))
}

func (s *Store) GetVote(id uint64, voter common.Address) (v *VoteRecord, err error) {
	if err = s.st.Get(GetVoteKey(id, voter), &v); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.VoteNotFound.Clone().SetData("id", id).SetData("voter", voter.Hex())
		}
		return
	}

	return
}

// ListVotes returns the vote records of one proposal, ordered by voter.
func (s *Store) ListVotes(id uint64) (votes []*VoteRecord, err error) {
	err = s.st.Walk(GetVotePrefix(id), nil, func(key, value []byte) (bool, error) {
		var v VoteRecord
		common.MustUnmarshalJSON(value, &v)
		votes = append(votes, &v)
		return true, nil
	})

	return
}

func (s *Store) EventCount() (uint64, error) {
	return getCount(s.st, EventCountKey)
}

func (s *Store) GetEvent(seq uint64) (*Event, error) {
	return getEvent(s.st, seq)
}

// Events returns up to `limit` events with a seq greater than `cursor`. A
// zero `limit` returns all of them.
func (s *Store) Events(cursor, limit uint64) (events []*Event, err error) {
	if cursor == math.MaxUint64 {
		return
	}

	option := storage.NewWalkOption(GetEventKey(cursor+1), limit, false)
	err = s.st.Walk(EventPrefix, option, func(key, value []byte) (bool, error) {
		var e Event
		common.MustUnmarshalJSON(value, &e)
		events = append(events, &e)
		return true, nil
	})

	return
}

// Begin opens a storage transaction. Until it is committed or discarded,
// other writers to the same database wait.
func (s *Store) Begin() (*StoreTx, error) {
	ts, err := s.st.OpenTransaction()
	if err != nil {
		return nil, err
	}

	return &StoreTx{store: s, ts: ts}, nil
}

// StoreTx groups the writes of one command.
type StoreTx struct {
	store   *Store
	ts      *storage.LevelDBBackend
	touched []*Proposal
}

// NewProposal assigns the next id to `p` and stores it.
func (tx *StoreTx) NewProposal(p *Proposal) error {
	count, err := getCount(tx.ts, ProposalCountKey)
	if err != nil {
		return err
	}

	p.ID = count + 1
	if err = tx.ts.New(GetProposalKey(p.ID), p); err != nil {
		return err
	}
	if err = tx.ts.Put(ProposalCountKey, p.ID); err != nil {
		return err
	}

	tx.touched = append(tx.touched, p.Clone())
	return nil
}

func (tx *StoreTx) UpdateProposal(p *Proposal) error {
	if err := tx.ts.Set(GetProposalKey(p.ID), p); err != nil {
		if errors.Code(err) == errors.StorageRecordDoesNotExist.Code {
			return errors.ProposalNotFound.Clone().SetData("id", p.ID)
		}
		return err
	}

	tx.touched = append(tx.touched, p.Clone())
	return nil
}

func (tx *StoreTx) NewVote(v *VoteRecord) error {
	if err := tx.ts.New(GetVoteKey(v.ProposalID, v.Voter), v); err != nil {
		if errors.Code(err) == errors.StorageRecordAlreadyExists.Code {
			return errors.AlreadyVoted.Clone().SetData("id", v.ProposalID).SetData("voter", v.Voter.Hex())
		}
		return err
	}

	return nil
}

// AppendEvent gives `e` the next seq and a fresh id, and links it to the
// last stored event.
func (tx *StoreTx) AppendEvent(e *Event) error {
	count, err := getCount(tx.ts, EventCountKey)
	if err != nil {
		return err
	}

	var prevHash string
	if count > 0 {
		prev, err := getEvent(tx.ts, count)
		if err != nil {
			return err
		}
		prevHash = prev.Hash
	}

	e.Seq = count + 1
	e.ID = common.GetUniqueIDFromUUID()
	if err = e.seal(prevHash); err != nil {
		return err
	}

	if err = tx.ts.New(GetEventKey(e.Seq), e); err != nil {
		return err
	}

	return tx.ts.Put(EventCountKey, e.Seq)
}

// Commit writes everything at once; the proposal cache is refreshed only
// after the data is in the database.
func (tx *StoreTx) Commit() error {
	if err := tx.ts.Commit(); err != nil {
		tx.evict()
		return err
	}

	if tx.store.cache != nil {
		for _, p := range tx.touched {
			tx.store.cache.Add(p.ID, p)
		}
	}

	return nil
}

func (tx *StoreTx) Discard() error {
	tx.evict()
	return tx.ts.Discard()
}

func (tx *StoreTx) evict() {
	if tx.store.cache == nil {
		return
	}

	for _, p := range tx.touched {
		tx.store.cache.Remove(p.ID)
	}
}

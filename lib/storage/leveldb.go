package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbIterator "github.com/syndtr/goleveldb/leveldb/iterator"
	leveldbOpt "github.com/syndtr/goleveldb/leveldb/opt"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"boscoin.io/govern/lib/common"
	"boscoin.io/govern/lib/errors"
)

type LevelDBCore interface {
	Has([]byte, *leveldbOpt.ReadOptions) (bool, error)
	Get([]byte, *leveldbOpt.ReadOptions) ([]byte, error)
	NewIterator(*leveldbUtil.Range, *leveldbOpt.ReadOptions) leveldbIterator.Iterator
	Put([]byte, []byte, *leveldbOpt.WriteOptions) error
	Write(*leveldb.Batch, *leveldbOpt.WriteOptions) error
	Delete([]byte, *leveldbOpt.WriteOptions) error
}

// LevelDBBackend stores JSON encoded values under string keys. The value
// returned by `OpenTransaction` shares the same `DB`, but every write goes to
// the transaction until `Commit` or `Discard`.
//
// While a transaction is open, writes made directly on the `DB` block.
type LevelDBBackend struct {
	DB *leveldb.DB

	Core LevelDBCore
}

type IterItem struct {
	N     uint64
	Key   []byte
	Value []byte
}

func setLevelDBCoreError(err error) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*errors.Error); ok {
		return e
	}

	return errors.NewError(
		errors.StorageCoreError.Code,
		fmt.Sprintf("%s: %s", errors.StorageCoreError.Message, err.Error()),
	)
}

func NewStorage(config *Config) (st *LevelDBBackend, err error) {
	st = &LevelDBBackend{}
	if err = st.Init(config); err != nil {
		return nil, err
	}

	return
}

func (st *LevelDBBackend) Init(config *Config) (err error) {
	if config == nil {
		return errors.InvalidStorageConfig
	}

	var db *leveldb.DB

	switch config.Scheme {
	case "file":
		if db, err = leveldb.OpenFile(config.Path, nil); err != nil {
			err = setLevelDBCoreError(err)
			return
		}
	case "memory":
		sto := leveldbStorage.NewMemStorage()
		if db, err = leveldb.Open(sto, nil); err != nil {
			err = setLevelDBCoreError(err)
			return
		}
	default:
		return errors.InvalidStorageConfig.Clone().SetData("scheme", config.Scheme)
	}

	st.DB = db
	st.Core = db

	return
}

func (st *LevelDBBackend) Close() error {
	if st.DB == nil {
		return nil
	}

	return st.DB.Close()
}

func (st *LevelDBBackend) IsTransaction() bool {
	_, ok := st.Core.(*leveldb.Transaction)
	return ok
}

func (st *LevelDBBackend) OpenTransaction() (*LevelDBBackend, error) {
	if st.IsTransaction() {
		return nil, errors.StorageTransactionOpened
	}

	transaction, err := st.DB.OpenTransaction()
	if err != nil {
		err = setLevelDBCoreError(err)
		return nil, err
	}

	return &LevelDBBackend{
		DB:   st.DB,
		Core: transaction,
	}, nil
}

func (st *LevelDBBackend) Discard() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return errors.StorageNotTransaction
	}

	ts.Discard()
	return nil
}

func (st *LevelDBBackend) Commit() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return errors.StorageNotTransaction
	}

	return setLevelDBCoreError(ts.Commit())
}

func (st *LevelDBBackend) makeKey(key string) []byte {
	return []byte(key)
}

func (st *LevelDBBackend) encode(v interface{}) (encoded []byte, err error) {
	if serializable, ok := v.(common.Serializable); ok {
		encoded, err = serializable.Serialize()
	} else {
		encoded, err = json.Marshal(v)
	}

	err = setLevelDBCoreError(err)
	return
}

func (st *LevelDBBackend) Has(k string) (bool, error) {
	ok, err := st.Core.Has(st.makeKey(k), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, setLevelDBCoreError(err)
	}

	return ok, nil
}

func (st *LevelDBBackend) GetRaw(k string) (b []byte, err error) {
	b, err = st.Core.Get(st.makeKey(k), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.StorageRecordDoesNotExist
	}
	err = setLevelDBCoreError(err)

	return
}

func (st *LevelDBBackend) Get(k string, i interface{}) (err error) {
	var b []byte
	if b, err = st.GetRaw(k); err != nil {
		return
	}

	if err = json.Unmarshal(b, i); err != nil {
		err = setLevelDBCoreError(err)
		return
	}

	return
}

// New stores a value under a key which must not exist yet.
func (st *LevelDBBackend) New(k string, v interface{}) (err error) {
	var encoded []byte
	if encoded, err = st.encode(v); err != nil {
		return
	}

	var exists bool
	if exists, err = st.Has(k); exists || err != nil {
		if exists {
			err = errors.StorageRecordAlreadyExists.Clone().SetData("key", k)
		}
		return
	}

	err = setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))

	return
}

// Set replaces the value of an existing key.
func (st *LevelDBBackend) Set(k string, v interface{}) (err error) {
	var encoded []byte
	if encoded, err = st.encode(v); err != nil {
		return
	}

	var exists bool
	if exists, err = st.Has(k); !exists || err != nil {
		if !exists {
			err = errors.StorageRecordDoesNotExist.Clone().SetData("key", k)
		}
		return
	}

	err = setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))

	return
}

// Put stores a value whether the key exists or not.
func (st *LevelDBBackend) Put(k string, v interface{}) (err error) {
	var encoded []byte
	if encoded, err = st.encode(v); err != nil {
		return
	}

	err = setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))

	return
}

// GetIterator walks the records under `prefix` in key order.
//
// With a cursor, iteration starts at the first key >= cursor, or, in reverse,
// at the last key <= cursor. The first returned function yields the next item
// and false once the records (or the limit) are exhausted; the second
// releases the iterator early.
func (st *LevelDBBackend) GetIterator(prefix string, option ListOptions) (func() (IterItem, bool), func()) {
	var reverse = false
	var cursor []byte
	var limit uint64 = 0
	if option != nil {
		reverse = option.Reverse()
		cursor = option.Cursor()
		limit = option.Limit()
	}

	var dbRange *leveldbUtil.Range
	if len(prefix) > 0 {
		dbRange = leveldbUtil.BytesPrefix(st.makeKey(prefix))
	}

	iter := st.Core.NewIterator(dbRange, nil)

	var positioned bool
	switch {
	case cursor == nil && !reverse:
		positioned = iter.First()
	case cursor == nil && reverse:
		positioned = iter.Last()
	case !reverse:
		positioned = iter.Seek(cursor)
	default:
		if positioned = iter.Seek(cursor); !positioned {
			positioned = iter.Last()
		} else if bytes.Compare(iter.Key(), cursor) > 0 {
			positioned = iter.Prev()
		}
	}

	funcNext := iter.Next
	if reverse {
		funcNext = iter.Prev
	}

	var n uint64
	var released bool
	release := func() {
		if !released {
			released = true
			iter.Release()
		}
	}

	return func() (IterItem, bool) {
			if released {
				return IterItem{}, false
			}

			if n > 0 {
				positioned = funcNext()
			}

			if !positioned || (limit != 0 && n >= limit) {
				release()
				return IterItem{}, false
			}

			n++
			return IterItem{
				N:     n,
				Key:   append([]byte(nil), iter.Key()...),
				Value: append([]byte(nil), iter.Value()...),
			}, true
		},
		release
}

type (
	WalkFunc   func(key, value []byte) (bool, error)
	WalkOption struct {
		Cursor  string
		Limit   uint64
		Reverse bool
	}
)

func NewWalkOption(cursor string, limit uint64, reverse bool) *WalkOption {
	o := &WalkOption{
		Cursor:  cursor,
		Limit:   limit,
		Reverse: reverse,
	}
	return o
}

// Walk calls `walkFunc` for every record under `prefix` until it returns
// false or an error. A zero `Limit` walks everything.
func (st *LevelDBBackend) Walk(prefix string, option *WalkOption, walkFunc WalkFunc) error {
	if option == nil {
		option = &WalkOption{}
	}

	var cursor []byte
	if len(option.Cursor) > 0 {
		cursor = st.makeKey(option.Cursor)
	}

	next, release := st.GetIterator(prefix, NewDefaultListOptions(option.Reverse, cursor, option.Limit))
	defer release()

	for {
		item, ok := next()
		if !ok {
			break
		}

		if more, err := walkFunc(item.Key, item.Value); err != nil {
			return err
		} else if !more {
			break
		}
	}

	return nil
}

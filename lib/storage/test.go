package storage

import "os"

func CleanDB(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	os.RemoveAll(path)
}

func NewTestMemoryLevelDBBackend() (st *LevelDBBackend, err error) {
	config, _ := NewConfigFromString("memory://")

	st = &LevelDBBackend{}
	if err = st.Init(config); err != nil {
		return
	}

	return
}

// NewTestFileLevelDBBackend opens a leveldb under `path`; remove it with
// `CleanDB` after `Close`.
func NewTestFileLevelDBBackend(path string) (st *LevelDBBackend, err error) {
	var config *Config
	if config, err = NewConfigFromString("file://" + path); err != nil {
		return
	}

	st = &LevelDBBackend{}
	if err = st.Init(config); err != nil {
		return
	}

	return
}

package storefake

import (
	"sync"

	"github.com/jrsteele09/go-course-portal/tokens"
)

var _ tokens.Store = (*FakeTokenStore)(nil)

// FakeTokenStore keeps tokens in memory. It backs the "memory" driver and tests.
type FakeTokenStore struct {
	values map[string]string
	writes int
	lock   sync.RWMutex
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{
		values: make(map[string]string),
	}
}

func (fs *FakeTokenStore) Get(name string) (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	v, ok := fs.values[name]
	return v, ok
}

func (fs *FakeTokenStore) Set(name, value string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.values[name] = value
	fs.writes++
}

func (fs *FakeTokenStore) Clear(name string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.values, name)
}

// Writes counts Set calls
func (fs *FakeTokenStore) Writes() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.writes
}

// Len returns the number of stored values
func (fs *FakeTokenStore) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.values)
}

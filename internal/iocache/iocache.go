// Package iocache is for caching I/O calls and recording merge history.
package iocache

import (
	"sync"

	"github.com/worktally/worktally/internal/contract"
)

// CacheStoreManager manages the activity cache and the merge history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager wraps already opened stores. Either may be nil.
func NewCacheStoreManager(activity contract.CacheStore, history contract.HistoryStore) *CacheStoreManager {
	return &CacheStoreManager{activity: activity, history: history}
}

// GetActivityStore returns the commit activity CacheStore.
func (mgr *CacheStoreManager) GetActivityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetHistoryStore returns the merge HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

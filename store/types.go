package store

import "github.com/ourkive/quorum"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = quorum.ReadOnlyKVStore
	SetDeleter       = quorum.SetDeleter
	KVStore          = quorum.KVStore
	Batch            = quorum.Batch
	Iterator         = quorum.Iterator
	CacheableKVStore = quorum.CacheableKVStore
	KVCacheWrap      = quorum.KVCacheWrap
	CommitKVStore    = quorum.CommitKVStore
	CommitID         = quorum.CommitID
	Model            = quorum.Model
)

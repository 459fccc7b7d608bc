package owners

import (
	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/gconf"
)

// Registry answers whether an address is an authorized owner and exposes the
// quorum threshold. It is immutable once created and safe for concurrent use.
type Registry struct {
	owners    []quorum.Address
	index     map[string]struct{}
	threshold uint32
}

// NewRegistry validates the owner set and threshold. No registry is returned
// when the configuration is invalid.
func NewRegistry(owners []quorum.Address, threshold uint32) (*Registry, error) {
	conf := Config{Owners: owners, Threshold: threshold}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		owners:    make([]quorum.Address, len(owners)),
		index:     make(map[string]struct{}, len(owners)),
		threshold: threshold,
	}
	for i, o := range owners {
		r.owners[i] = o.Clone()
		r.index[string(o)] = struct{}{}
	}
	return r, nil
}

// Load reads the owner configuration stored in the database and builds a
// registry out of it.
func Load(db gconf.ReadStore) (*Registry, error) {
	var conf Config
	if err := gconf.Load(db, PackageName, &conf); err != nil {
		return nil, err
	}
	return NewRegistry(conf.Owners, conf.Threshold)
}

// Save writes the registry configuration to the database.
func (r *Registry) Save(db gconf.Store) error {
	return gconf.Save(db, PackageName, r.Config())
}

// IsOwner returns true if given address belongs to the owner set.
func (r *Registry) IsOwner(addr quorum.Address) bool {
	_, ok := r.index[string(addr)]
	return ok
}

// OwnerCount returns the size of the owner set.
func (r *Registry) OwnerCount() int {
	return len(r.owners)
}

// Threshold returns the number of confirmations required for execution.
func (r *Registry) Threshold() int {
	return int(r.threshold)
}

// Owners returns a copy of the owner set, in configuration order.
func (r *Registry) Owners() []quorum.Address {
	res := make([]quorum.Address, len(r.owners))
	for i, o := range r.owners {
		res[i] = o.Clone()
	}
	return res
}

// Config returns the configuration this registry was built from.
func (r *Registry) Config() *Config {
	return &Config{Owners: r.Owners(), Threshold: r.threshold}
}

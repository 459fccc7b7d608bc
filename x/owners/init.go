package owners

import (
	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/gconf"
)

// Initializer stores the owner configuration found in the genesis file
// under {"conf": {"owners": {...}}}.
type Initializer struct{}

var _ quorum.Initializer = Initializer{}

// FromGenesis validates and saves the owner configuration.
func (Initializer) FromGenesis(opts quorum.Options, db quorum.KVStore) error {
	init := gconf.NewInitializer(PackageName, func() gconf.Configuration { return new(Config) })
	return init.FromGenesis(opts, db)
}

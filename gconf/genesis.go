package gconf

import (
	"github.com/ourkive/quorum"
)

// Initializer loads a single package configuration from the genesis file.
type Initializer struct {
	pkg  string
	conf func() Configuration
}

var _ quorum.Initializer = Initializer{}

// NewInitializer returns an initializer that reads opts["conf"][pkg] into a
// fresh object returned by conf and stores it.
func NewInitializer(pkg string, conf func() Configuration) Initializer {
	return Initializer{pkg: pkg, conf: conf}
}

// FromGenesis will parse the package configuration from genesis
// and save it to the database
func (i Initializer) FromGenesis(opts quorum.Options, db quorum.KVStore) error {
	return InitConfig(db, opts, i.pkg, i.conf())
}

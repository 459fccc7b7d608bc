/*
Package app ties the pieces together into a wallet living in a home
directory: a durable iavl store, the owner registry loaded from it and an
approval engine committing a new version after every applied transition.
*/
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/store/iavl"
	"github.com/ourkive/quorum/x/approval"
	"github.com/ourkive/quorum/x/dispatch"
	"github.com/ourkive/quorum/x/ledger"
	"github.com/ourkive/quorum/x/owners"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// DataDir is the directory inside of home holding the database.
	DataDir = "data"
	dbName  = "wallet"
)

// genesisInit seeds the state of every extension keeping configuration.
var genesisInit = quorum.ChainInitializers(
	owners.Initializer{},
)

// InitWallet creates the wallet state from genesis and commits it as the
// first version. A home that was already initialized is left untouched.
func InitWallet(home string, gen Genesis) error {
	db, err := openStore(home)
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := db.LatestVersion()
	if err != nil {
		return err
	}
	if info.Version != 0 {
		return errors.Wrapf(errors.ErrState, "wallet in %s already initialized", home)
	}

	cache := db.Adapter().CacheWrap()
	if err := genesisInit.FromGenesis(gen.AppOptions, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if _, err := db.Commit(); err != nil {
		return errors.Wrap(err, "commit genesis")
	}
	return nil
}

// Wallet is an opened wallet home directory.
type Wallet struct {
	Engine *approval.Engine

	home   string
	db     iavl.CommitStore
	logger log.Logger
}

// OpenWallet loads the latest committed state of an initialized wallet. Calls
// accepted by the engine are passed to the dispatcher.
func OpenWallet(home string, d dispatch.Dispatcher, logger log.Logger, opts ...approval.Option) (*Wallet, error) {
	db, err := openStore(home)
	if err != nil {
		return nil, err
	}
	info, err := db.LatestVersion()
	if err != nil {
		db.Close()
		return nil, err
	}
	if info.Version == 0 {
		db.Close()
		return nil, errors.Wrapf(errors.ErrState, "wallet in %s not initialized", home)
	}

	kv := db.Adapter()
	registry, err := owners.Load(kv)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "owners")
	}

	opts = append([]approval.Option{approval.WithCommitter(db)}, opts...)
	logger.Debug("wallet opened", "home", home, "version", info.Version)
	return &Wallet{
		Engine: approval.NewEngine(kv, registry, ledger.NewLedger(), d, opts...),
		home:   home,
		db:     db,
		logger: logger,
	}, nil
}

// Context returns ctx carrying the wallet logger.
func (w *Wallet) Context(ctx context.Context) context.Context {
	return quorum.WithLogInfo(quorum.WithLogger(ctx, w.logger), "wallet", w.home)
}

// Version returns the latest committed version.
func (w *Wallet) Version() (quorum.CommitID, error) {
	return w.db.LatestVersion()
}

// Close releases the database.
func (w *Wallet) Close() error {
	return w.db.Close()
}

func openStore(home string) (iavl.CommitStore, error) {
	dir := filepath.Join(home, DataDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return iavl.CommitStore{}, errors.Wrap(err, "data directory")
	}
	db, err := iavl.NewCommitStore(dir, dbName)
	if err != nil {
		return db, err
	}
	if err := db.LoadLatestVersion(); err != nil {
		db.Close()
		return db, err
	}
	return db, nil
}

package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/x/owners"
)

// Genesis file format. Each extension looks up its own key in the app options.
type Genesis struct {
	AppOptions quorum.Options `json:"app_options"`
}

// LoadGenesis reads a genesis file from disk.
func LoadGenesis(path string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return gen, errors.Wrap(err, "read genesis file")
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "cannot parse genesis file: %s", err)
	}
	return gen, nil
}

// NewGenesis returns a genesis holding the given owner configuration.
func NewGenesis(conf owners.Config) (Genesis, error) {
	raw, err := json.Marshal(map[string]owners.Config{owners.PackageName: conf})
	if err != nil {
		return Genesis{}, errors.Wrap(err, "owners configuration")
	}
	return Genesis{
		AppOptions: quorum.Options{"conf": raw},
	}, nil
}

package owners

import (
	"github.com/gogo/protobuf/proto"
	"github.com/ourkive/quorum"
	"github.com/ourkive/quorum/errors"
	"github.com/ourkive/quorum/gconf"
)

// PackageName is the key under which the configuration is stored with gconf
// and looked up in the genesis "conf" section.
const PackageName = "owners"

// Config holds the owner set and the quorum threshold.
type Config struct {
	Owners    []quorum.Address `json:"owners"`
	Threshold uint32           `json:"threshold"`
}

var _ gconf.Configuration = (*Config)(nil)

// Validate checks the owner set is not empty, holds only valid and unique
// addresses, and that the threshold is within [1, len(owners)].
func (c *Config) Validate() error {
	if len(c.Owners) == 0 {
		return errors.Wrap(errors.ErrEmptyOwnerSet, "owners")
	}
	seen := make(map[string]struct{}, len(c.Owners))
	for i, o := range c.Owners {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(errors.ErrInput, "owner #%d: %s", i, err)
		}
		if _, ok := seen[string(o)]; ok {
			return errors.Wrapf(errors.ErrDuplicateOwner, "owner #%d: %s", i, o)
		}
		seen[string(o)] = struct{}{}
	}
	if c.Threshold < 1 || int(c.Threshold) > len(c.Owners) {
		return errors.Wrapf(errors.ErrInvalidThreshold,
			"threshold %d must be between 1 and %d", c.Threshold, len(c.Owners))
	}
	return nil
}

// Marshal serializes the configuration using protobuf.
func (c *Config) Marshal() ([]byte, error) {
	rec := configRecord{
		Owners:    make([][]byte, len(c.Owners)),
		Threshold: c.Threshold,
	}
	for i, o := range c.Owners {
		rec.Owners[i] = o
	}
	return proto.Marshal(&rec)
}

// Unmarshal loads the configuration from its protobuf representation.
func (c *Config) Unmarshal(raw []byte) error {
	var rec configRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	c.Threshold = rec.Threshold
	c.Owners = make([]quorum.Address, len(rec.Owners))
	for i, o := range rec.Owners {
		c.Owners[i] = quorum.Address(o)
	}
	return nil
}

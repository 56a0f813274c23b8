// Package assets maps asset names to their issuing identities.
package assets

import (
	"os"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/payload"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// DefaultIssuers are the assets known without a catalog file.
var DefaultIssuers = map[string]string{
	"QXMR": "QXMRTKAIIGLUREPIQPCMHCKWSIPDTUYFCFNYXQLTECSUJVYEMMDELBMDOEYB",
	"CFB":  "CFBMEMZOIDEXQAUXYYSZIURADQLAPWPMNJXQSNVQZAHYVOPYUKKJBJUCTVJL",
	"QCAP": "QCAPWMYRSHLBJHSTTZQVCIBARVOASKDENASAKNOBRGPFWWKRCUVUAXYEZVOG",
}

// Asset is one catalog entry.
type Asset struct {
	Name   string
	Issuer identity.Identity
}

type fileAsset struct {
	Name   string `toml:"name"`
	Issuer string `toml:"issuer"`
}

type catalogFile struct {
	Assets []fileAsset `toml:"asset"`
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	issuers map[string]identity.Identity
}

// New returns a catalog holding DefaultIssuers.
func New() *Catalog {
	c := &Catalog{issuers: make(map[string]identity.Identity, len(DefaultIssuers))}
	for name, issuer := range DefaultIssuers {
		c.issuers[name] = identity.MustParse(issuer)
	}

	return c
}

// Load returns the default catalog overlaid with the entries of the TOML file
// at path. An empty path yields the defaults.
//
//	[[asset]]
//	name = "QDOGE"
//	issuer = "..."
func Load(path string) (*Catalog, error) {
	c := New()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read asset catalog")
	}

	if err := c.Merge(string(b)); err != nil {
		return nil, errors.Wrapf(err, "invalid asset catalog %s", path)
	}

	return c, nil
}

// Merge adds or replaces the entries of a TOML document.
func (c *Catalog) Merge(doc string) error {
	var file catalogFile
	if _, err := toml.Decode(doc, &file); err != nil {
		return errors.Wrap(err, "failed to decode asset catalog")
	}

	parsed := make(map[string]identity.Identity, len(file.Assets))
	for _, a := range file.Assets {
		name, err := payload.NormalizeAssetName(a.Name)
		if err != nil {
			return err
		}

		issuer, err := identity.Parse(a.Issuer)
		if err != nil {
			return errors.Wrapf(err, "asset %s", name)
		}

		parsed[name] = issuer
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name, issuer := range parsed {
		c.issuers[name] = issuer
	}

	return nil
}

// Set registers or replaces a single asset.
func (c *Catalog) Set(name string, issuer identity.Identity) error {
	name, err := payload.NormalizeAssetName(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.issuers[name] = issuer
	return nil
}

// Issuer returns the issuing identity of name, which is matched case-insensitively.
func (c *Catalog) Issuer(name string) (identity.Identity, error) {
	normalized, err := payload.NormalizeAssetName(name)
	if err != nil {
		return identity.Identity{}, walleterrors.Wrap(err, walleterrors.CodeUnknownAsset, "unknown asset")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	issuer, ok := c.issuers[normalized]
	if !ok {
		return identity.Identity{}, walleterrors.Wrap(errors.Errorf("asset %s", normalized), walleterrors.CodeUnknownAsset, "unknown asset")
	}

	return issuer, nil
}

// List returns the catalog sorted by name.
func (c *Catalog) List() []Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Asset, 0, len(c.issuers))
	for name, issuer := range c.issuers {
		out = append(out, Asset{Name: name, Issuer: issuer})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

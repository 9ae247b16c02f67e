package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/types"
)

//go:embed data/catalog.yaml
var defaultYAML []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once per process
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(bytes.NewReader(defaultYAML))
		if defaultErr != nil {
			defaultErr = errors.Wrap(defaultErr, "embedded catalog")
		}
	})
	return defaultCat, defaultErr
}

// Load decodes YAML catalog data from r
func Load(r io.Reader) (*Catalog, error) {
	var d Data
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(errors.ErrCatalogInvalid, "catalog is empty")
		}
		return nil, errors.Wrap(err, "failed to decode catalog")
	}
	return New(d)
}

// LoadFile reads a catalog from path. An empty path yields the embedded default.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open catalog %s", path)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	return c, nil
}

// Validate checks IDs are unique, names are present, condition types are
// known and team/player references resolve.
func (d Data) Validate() error {
	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	leagues := map[string]bool{}
	for i, l := range d.Leagues {
		switch {
		case l.ID == "":
			report("leagues[%d]: id is required", i)
		case leagues[l.ID]:
			report("leagues[%d]: duplicate id %q", i, l.ID)
		}
		if strings.TrimSpace(l.Name) == "" {
			report("leagues[%d]: name is required", i)
		}
		leagues[l.ID] = true
	}

	teams := map[string]bool{}
	for i, t := range d.Teams {
		switch {
		case t.ID == "":
			report("teams[%d]: id is required", i)
		case teams[t.ID]:
			report("teams[%d]: duplicate id %q", i, t.ID)
		}
		if strings.TrimSpace(t.Name) == "" {
			report("teams[%d]: name is required", i)
		}
		if t.League != "" && !leagues[t.League] {
			report("teams[%d] %s: unknown league %q", i, t.ID, t.League)
		}
		teams[t.ID] = true
	}

	players := map[string]bool{}
	for i, p := range d.Players {
		switch {
		case p.ID == "":
			report("players[%d]: id is required", i)
		case players[p.ID]:
			report("players[%d]: duplicate id %q", i, p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			report("players[%d]: name is required", i)
		}
		if p.League != "" && !leagues[p.League] {
			report("players[%d] %s: unknown league %q", i, p.ID, p.League)
		}
		if p.Team != "" && !teams[p.Team] {
			report("players[%d] %s: unknown team %q", i, p.ID, p.Team)
		}
		players[p.ID] = true
	}

	conditions := map[string]bool{}
	for i, c := range d.Conditions {
		switch {
		case c.ID == "":
			report("conditions[%d]: id is required", i)
		case conditions[c.ID]:
			report("conditions[%d]: duplicate id %q", i, c.ID)
		}
		if strings.TrimSpace(c.Name) == "" {
			report("conditions[%d]: name is required", i)
		}
		if !types.ValidConditionType(c.Type) || c.Type == types.ConditionUnknown {
			report("conditions[%d] %s: unknown type %q", i, c.ID, c.Type)
		}
		conditions[c.ID] = true
	}

	if len(problems) == 0 {
		return nil
	}
	err := errors.Wrapf(errors.ErrCatalogInvalid, "%d problem(s)", len(problems))
	return errors.WithDetail(err, strings.Join(problems, "\n"))
}

package standards

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// file is the on-disk shape of one calculator's reference data.
type file struct {
	Calculator Calculator `yaml:"calculator"`
	Standards  []Standard `yaml:"standards"`
}

// Catalog is the read-only set of standards one calculator offers.
type Catalog struct {
	calculator Calculator
	standards  []Standard
	index      map[string]int
}

// NewCatalog validates the standards and builds a catalog. The slice is copied.
func NewCatalog(calc Calculator, stds []Standard) (*Catalog, error) {
	if err := Validate(calc, stds); err != nil {
		return nil, err
	}
	c := &Catalog{
		calculator: calc,
		standards:  make([]Standard, len(stds)),
		index:      make(map[string]int, len(stds)),
	}
	for i, s := range stds {
		c.standards[i] = clone(s)
		c.index[s.ID] = i
	}
	return c, nil
}

func (c *Catalog) Calculator() Calculator { return c.calculator }

// Get returns a copy of the standard with the given id.
func (c *Catalog) Get(id string) (Standard, error) {
	i, ok := c.index[id]
	if !ok {
		return Standard{}, fmt.Errorf("%s in %s: %w", id, c.calculator.ID, ErrNotFound)
	}
	return clone(c.standards[i]), nil
}

// List returns summaries in load order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.standards))
	for _, s := range c.standards {
		out = append(out, s.Summary())
	}
	return out
}

// Standards returns copies of every standard in load order.
func (c *Catalog) Standards() []Standard {
	out := make([]Standard, 0, len(c.standards))
	for _, s := range c.standards {
		out = append(out, clone(s))
	}
	return out
}

// Library indexes catalogs by calculator id.
type Library struct {
	order    []string
	catalogs map[string]*Catalog
}

// Default loads the reference data compiled into the binary.
func Default() (*Library, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// MustDefault is Default for package-level wiring and tests.
func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(err)
	}
	return lib
}

// Load reads every *.yaml file at the root of fsys, one calculator per file.
func Load(fsys fs.FS) (*Library, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(names)

	lib := &Library{catalogs: make(map[string]*Catalog, len(names))}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		cat, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		id := cat.calculator.ID
		if _, dup := lib.catalogs[id]; dup {
			return nil, fmt.Errorf("%s: duplicate calculator %q", name, id)
		}
		lib.catalogs[id] = cat
		lib.order = append(lib.order, id)
	}
	return lib, nil
}

// Parse decodes one calculator file.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	return NewCatalog(f.Calculator, f.Standards)
}

// Catalog returns the catalog of a calculator.
func (l *Library) Catalog(calculatorID string) (*Catalog, error) {
	c, ok := l.catalogs[calculatorID]
	if !ok {
		return nil, fmt.Errorf("calculator %s: %w", calculatorID, ErrNotFound)
	}
	return c, nil
}

// Calculators lists calculator definitions, grouped by category then by file order.
func (l *Library) Calculators() []Calculator {
	out := make([]Calculator, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.catalogs[id].calculator)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].Category, out[j].Category) < 0
	})
	return out
}

func clone(s Standard) Standard {
	out := s
	out.Sieves = append([]SieveSpec(nil), s.Sieves...)
	out.Rates = append([]RateRange(nil), s.Rates...)
	if s.Constants != nil {
		out.Constants = make(map[string]float64, len(s.Constants))
		for k, v := range s.Constants {
			out.Constants[k] = v
		}
	}
	if s.Mix != nil {
		m := *s.Mix
		out.Mix = &m
	}
	return out
}

package species

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bahria/bahria-go/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed species.yaml
var defaultCatalog []byte

// catalogFile is the on-disk layout of a species catalog.
type catalogFile struct {
	Species   []Profile            `yaml:"species"`
	Economics map[string]Economics `yaml:"economics"`
}

// Catalog is an immutable Store loaded once at process start.
type Catalog struct {
	order     []string
	profiles  map[string]Profile
	economics map[string]Economics
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from settings
	if err != nil {
		return nil, errors.New(err).
			Component("species").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer f.Close()

	return Load(f)
}

// Open returns the catalog at path, or the built-in catalog when path is empty.
func Open(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.New(err).
			Component("species").
			Category(errors.CategoryFileParsing).
			Context("operation", "decode-catalog").
			Build()
	}

	c := &Catalog{
		profiles:  make(map[string]Profile, len(file.Species)),
		economics: make(map[string]Economics, len(file.Economics)),
	}

	for i := range file.Species {
		p := file.Species[i]
		p.Code = normalizeCode(p.Code)
		if err := validateProfile(&p); err != nil {
			return nil, err
		}
		if _, exists := c.profiles[p.Code]; exists {
			return nil, errors.Newf("duplicate species code %q", p.Code).
				Component("species").
				Category(errors.CategoryValidation).
				Context("code", p.Code).
				Build()
		}
		c.profiles[p.Code] = p
		c.order = append(c.order, p.Code)
	}

	for code, econ := range file.Economics {
		code = normalizeCode(code)
		if _, ok := c.profiles[code]; !ok {
			return nil, errors.Newf("economics entry for unknown species %q", code).
				Component("species").
				Category(errors.CategoryValidation).
				Context("code", code).
				Build()
		}
		if econ.DailyCatchTonnes < 0 || econ.WorkersAffected < 0 {
			return nil, errors.Newf("economics for %q must not be negative", code).
				Component("species").
				Category(errors.CategoryValidation).
				Context("code", code).
				Build()
		}
		c.economics[code] = econ
	}

	if len(c.order) == 0 {
		return nil, errors.Newf("species catalog is empty").
			Component("species").
			Category(errors.CategoryValidation).
			Build()
	}

	return c, nil
}

// validateProfile checks the biological invariants the decision engine relies on.
func validateProfile(p *Profile) error {
	var problems []string

	if p.Code == "" {
		problems = append(problems, "code is required")
	}
	if p.L50Cm <= 0 {
		problems = append(problems, "l50_cm must be positive")
	}
	if p.OptimalSizeCm < p.L50Cm {
		problems = append(problems, "optimal_size_cm must not be below l50_cm")
	}
	if p.MaturityWeightG <= 0 || p.OptimalWeightG <= 0 {
		problems = append(problems, "weights must be positive")
	}
	if len(p.SpawningMonths) == 0 {
		problems = append(problems, "spawning_months must not be empty")
	}
	for _, m := range p.SpawningMonths {
		if m < 1 || m > 12 {
			problems = append(problems, fmt.Sprintf("spawning month %d out of range 1-12", m))
		}
	}
	if p.CPUEPrior < 0 || p.CPUEPrevious < 0 || p.CPUERecent < 0 {
		problems = append(problems, "cpue values must not be negative")
	}

	if len(problems) > 0 {
		return errors.Newf("invalid species %q: %s", p.Code, strings.Join(problems, "; ")).
			Component("species").
			Category(errors.CategoryValidation).
			Context("code", p.Code).
			Build()
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Get returns the profile for code.
func (c *Catalog) Get(code string) (Profile, bool) {
	p, ok := c.profiles[normalizeCode(code)]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// Lookup is Get with a not-found error for unknown codes.
func (c *Catalog) Lookup(code string) (Profile, error) {
	p, ok := c.Get(code)
	if !ok {
		return Profile{}, NotFound(code)
	}
	return p, nil
}

// List returns all profiles in catalog order.
func (c *Catalog) List() []Profile {
	out := make([]Profile, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.profiles[code].clone())
	}
	return out
}

// Economics returns the economic reference for code.
func (c *Catalog) Economics(code string) Economics {
	return c.economics[normalizeCode(code)]
}

// NotFound builds the error returned for an unknown species code.
func NotFound(code string) error {
	return errors.Newf("unknown species %q", code).
		Component("species").
		Category(errors.CategoryNotFound).
		Context("code", code).
		Build()
}

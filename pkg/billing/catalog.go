package billing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPeriodDays is the billing window assumed when neither the event nor
// the plan says otherwise.
const DefaultPeriodDays = 30

// Plan is a purchasable subscription offer.
type Plan struct {
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	PriceID    string `yaml:"price_id"` // provider catalog price
	Amount     int64  `yaml:"amount"`   // minor units
	Currency   string `yaml:"currency"`
	PeriodDays int    `yaml:"period_days"`
}

// Period returns the plan's billing window length.
func (p Plan) Period() time.Duration {
	days := p.PeriodDays
	if days <= 0 {
		days = DefaultPeriodDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// Catalog indexes plans by key and by provider price id.
type Catalog struct {
	byKey   map[string]Plan
	byPrice map[string]Plan
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// NewCatalog validates plans and builds the lookup indexes.
func NewCatalog(plans ...Plan) (*Catalog, error) {
	c := &Catalog{
		byKey:   make(map[string]Plan, len(plans)),
		byPrice: make(map[string]Plan, len(plans)),
	}

	for i, p := range plans {
		switch {
		case p.Key == "":
			return nil, fmt.Errorf("%w: plan %d has no key", ErrInvalidPlanCatalog, i)
		case p.PriceID == "":
			return nil, fmt.Errorf("%w: plan %q has no price_id", ErrInvalidPlanCatalog, p.Key)
		case p.Amount < 0:
			return nil, fmt.Errorf("%w: plan %q has a negative amount", ErrInvalidPlanCatalog, p.Key)
		case p.PeriodDays < 0:
			return nil, fmt.Errorf("%w: plan %q has a negative period", ErrInvalidPlanCatalog, p.Key)
		}
		if _, ok := c.byKey[p.Key]; ok {
			return nil, fmt.Errorf("%w: duplicate plan key %q", ErrInvalidPlanCatalog, p.Key)
		}
		if _, ok := c.byPrice[p.PriceID]; ok {
			return nil, fmt.Errorf("%w: duplicate price_id %q", ErrInvalidPlanCatalog, p.PriceID)
		}
		c.byKey[p.Key] = p
		c.byPrice[p.PriceID] = p
	}

	return c, nil
}

// LoadCatalog parses a YAML document with a top-level "plans" list.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidPlanCatalog, err)
	}
	return NewCatalog(f.Plans...)
}

// LoadCatalogFile reads the catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidPlanCatalog, err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

func (c *Catalog) Plan(key string) (Plan, error) {
	p, ok := c.byKey[key]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

func (c *Catalog) PlanByPriceID(priceID string) (Plan, error) {
	p, ok := c.byPrice[priceID]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

// Plans returns every plan ordered by key.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.byKey))
	for _, p := range c.byKey {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Plan) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

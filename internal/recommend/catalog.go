// Package recommend serves dish recommendations from a YAML menu catalog.
package recommend

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/wolfeidau/reservations/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLimit = 5
	MaxLimit     = 50
)

// ErrDishNotFound is returned by Get for unknown dish IDs.
var ErrDishNotFound = errors.New("dish not found")

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Dishes []models.Dish `yaml:"dishes"`
}

// Catalog is an immutable, rating ordered set of dishes.
type Catalog struct {
	dishes []models.Dish
	byID   map[string]int
}

// Load reads the catalog at path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read menu catalog: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Dish IDs must be present and unique.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse menu catalog: %w", err)
	}

	c := &Catalog{
		dishes: file.Dishes,
		byID:   make(map[string]int, len(file.Dishes)),
	}

	for i := range c.dishes {
		d := &c.dishes[i]
		if d.ID == "" {
			return nil, fmt.Errorf("menu catalog entry %d has no id", i)
		}
		for j, tag := range d.Tags {
			d.Tags[j] = strings.ToLower(tag)
		}
	}

	slices.SortStableFunc(c.dishes, func(a, b models.Dish) int {
		if a.Rating != b.Rating {
			if a.Rating > b.Rating {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})

	for i, d := range c.dishes {
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate dish id %q in menu catalog", d.ID)
		}
		c.byID[d.ID] = i
	}

	return c, nil
}

// Len returns the number of dishes.
func (c *Catalog) Len() int {
	return len(c.dishes)
}

// Recommend returns up to limit dishes carrying tag (any dish when tag is empty), highest rated
// first with ties ordered by name. limit <= 0 means DefaultLimit; it is capped at MaxLimit.
func (c *Catalog) Recommend(tag string, limit int) []models.Dish {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	tag = strings.ToLower(strings.TrimSpace(tag))

	out := make([]models.Dish, 0, min(limit, len(c.dishes)))
	for _, d := range c.dishes {
		if len(out) == limit {
			break
		}
		if tag != "" && !slices.Contains(d.Tags, tag) {
			continue
		}
		out = append(out, cloneDish(d))
	}
	return out
}

// Get returns the dish with the given id.
func (c *Catalog) Get(id string) (models.Dish, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Dish{}, ErrDishNotFound
	}
	return cloneDish(c.dishes[i]), nil
}

func cloneDish(d models.Dish) models.Dish {
	d.Tags = slices.Clone(d.Tags)
	return d
}

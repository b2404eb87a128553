// Package catalog holds the read-only clinical taxonomies (patient
// populations, medications, devices and procedures) that entries reference
// by id. Catalogs are plain data handed to the engines; nothing here is
// global.
package catalog

const (
	TagVasopressor = "vasopressor"
	TagHighAcuity  = "high_acuity"
)

// DefaultAcuityWeight applies to items without an explicit weight and to
// custom labels that are not in any catalog.
const DefaultAcuityWeight = 1.0

type Item struct {
	ID           string   `json:"id" mapstructure:"id"`
	Label        string   `json:"label" mapstructure:"label"`
	Tags         []string `json:"tags,omitempty" mapstructure:"tags"`
	AcuityWeight float64  `json:"acuityWeight,omitempty" mapstructure:"acuity_weight"`
}

func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Weight returns the item's acuity weight, falling back to DefaultAcuityWeight.
func (i Item) Weight() float64 {
	if i.AcuityWeight <= 0 {
		return DefaultAcuityWeight
	}
	return i.AcuityWeight
}

// Taxonomy is one catalog with id lookups.
type Taxonomy struct {
	items []Item
	byID  map[string]int
}

func NewTaxonomy(items []Item) *Taxonomy {
	t := &Taxonomy{
		items: make([]Item, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if i, ok := t.byID[it.ID]; ok {
			t.items[i] = it
			continue
		}
		t.byID[it.ID] = len(t.items)
		t.items = append(t.items, it)
	}
	return t
}

// Lookup returns the item for id. A nil Taxonomy finds nothing.
func (t *Taxonomy) Lookup(id string) (Item, bool) {
	if t == nil {
		return Item{}, false
	}
	i, ok := t.byID[id]
	if !ok {
		return Item{}, false
	}
	return t.items[i], true
}

// Label returns the display label for id, or id itself when unknown.
func (t *Taxonomy) Label(id string) string {
	if it, ok := t.Lookup(id); ok && it.Label != "" {
		return it.Label
	}
	return id
}

// Weight returns the acuity weight for id; unknown ids weigh DefaultAcuityWeight.
func (t *Taxonomy) Weight(id string) float64 {
	if it, ok := t.Lookup(id); ok {
		return it.Weight()
	}
	return DefaultAcuityWeight
}

func (t *Taxonomy) HasTag(id, tag string) bool {
	it, ok := t.Lookup(id)
	return ok && it.HasTag(tag)
}

func (t *Taxonomy) Items() []Item {
	if t == nil {
		return nil
	}
	out := make([]Item, len(t.items))
	copy(out, t.items)
	return out
}

func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.items)
}

// Catalogs groups the four taxonomies an entry can reference.
type Catalogs struct {
	Populations *Taxonomy
	Medications *Taxonomy
	Devices     *Taxonomy
	Procedures  *Taxonomy
}

// Package stats ranks the populations, medications, devices and procedures
// a user has logged across their clinical entries.
package stats

import (
	"sort"

	"github.com/hackgods/clinical-tracker/internal/catalog"
	"github.com/hackgods/clinical-tracker/internal/clinical"
)

// DisplayLimit is how many items a ranked list shows before the overflow marker.
const DisplayLimit = 15

type Kind string

const (
	KindPopulation Kind = "population"
	KindMedication Kind = "medication"
	KindDevice     Kind = "device"
	KindProcedure  Kind = "procedure"
)

// Item is one counted experience. Catalog items and custom labels never
// share a key, even when their text matches.
type Item struct {
	Key        string                   `json:"key"`
	CategoryID string                   `json:"categoryId,omitempty"`
	Label      string                   `json:"label"`
	Custom     bool                     `json:"custom"`
	Count      int                      `json:"count"`
	Confidence clinical.ConfidenceLevel `json:"confidence,omitempty"`
}

type Summary struct {
	TopPopulation *Item `json:"topPopulation"`
	TopMedication *Item `json:"topMedication"`
	TopDevice     *Item `json:"topDevice"`
	TopProcedure  *Item `json:"topProcedure"`
}

// RankedList is a display-truncated ranking. Overflow counts the items
// hidden past DisplayLimit.
type RankedList struct {
	Items    []Item `json:"items"`
	Overflow int    `json:"overflow"`
	Total    int    `json:"total"`
}

type Breakdown struct {
	Populations RankedList `json:"populations"`
	Medications RankedList `json:"medications"`
	Devices     RankedList `json:"devices"`
	Procedures  RankedList `json:"procedures"`
}

type Aggregator struct {
	cats catalog.Catalogs
}

func NewAggregator(cats catalog.Catalogs) *Aggregator {
	return &Aggregator{cats: cats}
}

// Aggregate returns the most frequent item per taxonomy. Empty input yields
// nil tops.
func (a *Aggregator) Aggregate(entries []clinical.ClinicalEntry) Summary {
	return Summary{
		TopPopulation: top(a.Rank(entries, KindPopulation)),
		TopMedication: top(a.Rank(entries, KindMedication)),
		TopDevice:     top(a.Rank(entries, KindDevice)),
		TopProcedure:  top(a.Rank(entries, KindProcedure)),
	}
}

// Breakdown returns per-taxonomy ranked lists truncated to DisplayLimit.
func (a *Aggregator) Breakdown(entries []clinical.ClinicalEntry) Breakdown {
	return Breakdown{
		Populations: truncate(a.Rank(entries, KindPopulation)),
		Medications: truncate(a.Rank(entries, KindMedication)),
		Devices:     truncate(a.Rank(entries, KindDevice)),
		Procedures:  truncate(a.Rank(entries, KindProcedure)),
	}
}

// Rank counts one occurrence per entry per distinct item and orders by
// count descending, ties kept in first-seen order.
func (a *Aggregator) Rank(entries []clinical.ClinicalEntry, kind Kind) []Item {
	c := newCounter()
	tax := a.taxonomy(kind)

	for _, e := range entries {
		seen := make(map[string]bool)
		switch kind {
		case KindPopulation:
			for _, id := range e.PatientPopulations {
				c.add(seen, catalogKey(id), id, tax.Label(id), false, "")
			}
			for _, label := range e.CustomPopulations {
				c.add(seen, customKey(label), "", label, true, "")
			}
		default:
			refs, customs := itemsOf(e, kind)
			for _, ref := range refs {
				c.add(seen, catalogKey(ref.CategoryID), ref.CategoryID, tax.Label(ref.CategoryID), false, ref.ConfidenceLevel)
			}
			for _, label := range customs {
				c.add(seen, customKey(label), "", label, true, "")
			}
		}
	}

	return c.ranked()
}

func (a *Aggregator) taxonomy(kind Kind) *catalog.Taxonomy {
	switch kind {
	case KindPopulation:
		return a.cats.Populations
	case KindMedication:
		return a.cats.Medications
	case KindDevice:
		return a.cats.Devices
	case KindProcedure:
		return a.cats.Procedures
	}
	return nil
}

func itemsOf(e clinical.ClinicalEntry, kind Kind) ([]clinical.ItemRef, []string) {
	switch kind {
	case KindMedication:
		return e.Medications, e.CustomMedications
	case KindDevice:
		return e.Devices, e.CustomDevices
	case KindProcedure:
		return e.Procedures, e.CustomProcedures
	}
	return nil, nil
}

func catalogKey(id string) string   { return "catalog:" + id }
func customKey(label string) string { return "custom:" + label }

type counter struct {
	items []Item
	index map[string]int
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(seen map[string]bool, key, id, label string, custom bool, conf clinical.ConfidenceLevel) {
	i, ok := c.index[key]
	if !ok {
		i = len(c.items)
		c.index[key] = i
		c.items = append(c.items, Item{Key: key, CategoryID: id, Label: label, Custom: custom})
	}
	// Confidence may only rise, even when the item repeats within one entry.
	if conf != "" {
		c.items[i].Confidence = c.items[i].Confidence.Max(conf)
	}
	if seen[key] {
		return
	}
	seen[key] = true
	c.items[i].Count++
}

func (c *counter) ranked() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func top(items []Item) *Item {
	if len(items) == 0 {
		return nil
	}
	it := items[0]
	return &it
}

func truncate(items []Item) RankedList {
	list := RankedList{Items: items, Total: len(items)}
	if list.Items == nil {
		list.Items = []Item{}
	}
	if len(items) > DisplayLimit {
		list.Items = items[:DisplayLimit]
		list.Overflow = len(items) - DisplayLimit
	}
	return list
}

package catalog

import (
	"fmt"

	"github.com/spf13/viper"
)

// FromViper decodes catalogs from an already-loaded viper instance holding
// top-level populations, medications, devices and procedures lists.
// Sections missing from the config keep the built-in defaults.
func FromViper(v *viper.Viper) (Catalogs, error) {
	cats := Default()

	sections := []struct {
		key string
		dst **Taxonomy
	}{
		{"populations", &cats.Populations},
		{"medications", &cats.Medications},
		{"devices", &cats.Devices},
		{"procedures", &cats.Procedures},
	}
	for _, s := range sections {
		if !v.IsSet(s.key) {
			continue
		}
		var items []Item
		if err := v.UnmarshalKey(s.key, &items); err != nil {
			return Catalogs{}, fmt.Errorf("decode %s catalog: %w", s.key, err)
		}
		for i, it := range items {
			if it.ID == "" {
				return Catalogs{}, fmt.Errorf("%s catalog: item %d has no id", s.key, i)
			}
		}
		*s.dst = NewTaxonomy(items)
	}

	return cats, nil
}

package domain

import "time"

// CatalogItem is a reference-data record: a service type or a healthcare provider.
type CatalogItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// CatalogNames maps service type ids to display names.
func CatalogNames(items []CatalogItem) map[string]string {
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}
	return names
}

package routing

import "reportes/backend/internal/models"

// Catalog resolves entity names to catalog identifiers. Names are compared by
// exact string equality; they are the join key with the lexicon.
type Catalog struct {
	ids map[string]string
}

// NewCatalog indexes entities by name. Later duplicates are ignored.
func NewCatalog(entities []models.Entity) Catalog {
	ids := make(map[string]string, len(entities))
	for _, e := range entities {
		if _, ok := ids[e.Name]; ok {
			continue
		}
		ids[e.Name] = e.ID
	}
	return Catalog{ids: ids}
}

// Resolve returns the identifier for name, if known.
func (c Catalog) Resolve(name string) (string, bool) {
	id, ok := c.ids[name]
	return id, ok
}

// Len is the number of indexed entities.
func (c Catalog) Len() int { return len(c.ids) }

package features

import "github.com/google/uuid"

// Catalog is an immutable, ordered set of feature records with an id index.
// Its order defines the column order of the interaction matrix.
type Catalog struct {
	agents []*AgentFeatures
	index  map[uuid.UUID]int
}

// NewCatalog indexes records in the given order. A repeated id keeps its
// first occurrence.
func NewCatalog(records []*AgentFeatures) *Catalog {
	c := &Catalog{
		agents: make([]*AgentFeatures, 0, len(records)),
		index:  make(map[uuid.UUID]int, len(records)),
	}
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, dup := c.index[r.ID]; dup {
			continue
		}
		c.index[r.ID] = len(c.agents)
		c.agents = append(c.agents, r)
	}
	return c
}

// Len returns the number of agents
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.agents)
}

// Agents returns the records in catalog order. Callers must not modify it.
func (c *Catalog) Agents() []*AgentFeatures {
	if c == nil {
		return nil
	}
	return c.agents
}

// At returns the record in column i
func (c *Catalog) At(i int) *AgentFeatures {
	return c.agents[i]
}

// Get looks up a record by agent id
func (c *Catalog) Get(id uuid.UUID) (*AgentFeatures, bool) {
	i, ok := c.Index(id)
	if !ok {
		return nil, false
	}
	return c.agents[i], true
}

// Index returns the column of an agent id
func (c *Catalog) Index(id uuid.UUID) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.index[id]
	return i, ok
}

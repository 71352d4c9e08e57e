// Package category holds the static category registry used to label and
// group transactions.
package category

// Category is one registry entry.
type Category struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// UnknownKey is the key of the fallback entry returned by Resolve.
const UnknownKey = "unknown"

// Unknown is returned by Resolve for keys missing from the registry. Its name
// is translated by the formatter.
var Unknown = Category{
	Key:   UnknownKey,
	Name:  "Unknown category",
	Icon:  "help-circle",
	Color: "#969CB2",
}

// Registry is an immutable, ordered set of categories.
type Registry struct {
	entries []Category
	index   map[string]int
}

// New builds a registry preserving declaration order. Later duplicates of a
// key are ignored.
func New(entries ...Category) *Registry {
	r := &Registry{index: make(map[string]int, len(entries))}
	for _, c := range entries {
		if c.Key == "" {
			continue
		}
		if _, dup := r.index[c.Key]; dup {
			continue
		}
		r.index[c.Key] = len(r.entries)
		r.entries = append(r.entries, c)
	}
	return r
}

// Default returns the built-in registry.
func Default() *Registry {
	return New(
		Category{Key: "purchases", Name: "Compras", Icon: "shopping-bag", Color: "#5636D3"},
		Category{Key: "food", Name: "Alimentação", Icon: "coffee", Color: "#FF872C"},
		Category{Key: "salary", Name: "Salário", Icon: "dollar-sign", Color: "#12A454"},
		Category{Key: "car", Name: "Carro", Icon: "crosshair", Color: "#E83F5B"},
		Category{Key: "leisure", Name: "Lazer", Icon: "heart", Color: "#26195C"},
		Category{Key: "studies", Name: "Estudos", Icon: "book", Color: "#9C001A"},
	)
}

// Lookup finds a category by exact key.
func (r *Registry) Lookup(key string) (Category, bool) {
	i, ok := r.index[key]
	if !ok {
		return Category{}, false
	}
	return r.entries[i], true
}

// Contains reports whether key is registered.
func (r *Registry) Contains(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Resolve is Lookup with the Unknown fallback.
func (r *Registry) Resolve(key string) Category {
	if c, ok := r.Lookup(key); ok {
		return c
	}
	return Unknown
}

// All returns a copy of the entries in declaration order.
func (r *Registry) All() []Category {
	return append([]Category(nil), r.entries...)
}

func (r *Registry) Len() int { return len(r.entries) }

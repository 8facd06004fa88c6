package recipes

import (
	"context"

	"dysonfactory/internal/core/port"
)

// StaticDatabase is an in-memory recipe table. It backs tests and serves as
// the default lookup when no recipe database is configured.
type StaticDatabase struct {
	items     map[int]string      // recipe id -> output item
	consumers map[string][]string // item -> items consuming it
}

func NewStaticDatabase(items map[int]string, consumers map[string][]string) *StaticDatabase {
	if items == nil {
		items = map[int]string{}
	}
	if consumers == nil {
		consumers = map[string][]string{}
	}
	return &StaticDatabase{items: items, consumers: consumers}
}

// NewDefaultDatabase returns a table covering the early and mid game
// smelting and assembly chains, enough to resolve common recipe ids when no
// database is configured.
func NewDefaultDatabase() *StaticDatabase {
	return NewStaticDatabase(
		map[int]string{
			1:  "iron-ingot",
			2:  "copper-ingot",
			3:  "stone-brick",
			4:  "energetic-graphite",
			5:  "gear",
			6:  "magnet",
			7:  "magnetic-coil",
			8:  "circuit-board",
			9:  "glass",
			10: "silicon-ingot",
			11: "processor",
			12: "electric-motor",
			13: "electromagnetic-turbine",
			14: "plasma-exciter",
		},
		map[string][]string{
			"iron-ingot":     {"gear", "circuit-board", "electric-motor"},
			"copper-ingot":   {"circuit-board", "magnetic-coil", "plasma-exciter"},
			"magnet":         {"magnetic-coil", "electric-motor"},
			"magnetic-coil":  {"electric-motor", "plasma-exciter"},
			"gear":           {"electric-motor"},
			"electric-motor": {"electromagnetic-turbine"},
			"circuit-board":  {"processor"},
			"silicon-ingot":  {"processor"},
		},
	)
}

func (s *StaticDatabase) ItemForRecipe(ctx context.Context, recipeID int) (string, error) {
	return s.items[recipeID], nil
}

func (s *StaticDatabase) Consumers(ctx context.Context, item string) ([]string, error) {
	consumers := s.consumers[item]
	out := make([]string, len(consumers))
	copy(out, consumers)
	return out, nil
}

func (s *StaticDatabase) Ping(ctx context.Context) error {
	return nil
}

var _ port.RecipeDatabase = (*StaticDatabase)(nil)

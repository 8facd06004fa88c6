package port

import "context"

// RecipeDatabase is the external recipe and item-dependency lookup used by
// the bottleneck analyzer. Item identity is not inferable from assembler
// metrics alone.
type RecipeDatabase interface {
	// ItemForRecipe resolves the output item for a recipe id. Returns ""
	// with a nil error when the recipe is unknown; the caller reports the
	// finding as unresolved.
	ItemForRecipe(ctx context.Context, recipeID int) (string, error)

	// Consumers returns the items whose recipes consume the given item.
	Consumers(ctx context.Context, item string) ([]string, error)

	// Ping checks database health.
	Ping(ctx context.Context) error
}

// Package recipes provides the recipe and item-dependency lookups consumed
// by the bottleneck analyzer.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dysonfactory/internal/config"
	"dysonfactory/internal/core/port"

	_ "github.com/lib/pq"
)

// Open connects to the recipe database described by the config block.
func Open(cfg *config.RecipeDB) (*sql.DB, error) {
	if cfg == nil {
		return nil, errors.New("recipe database configuration is nil")
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUsername,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipe database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping recipe database: %w", err)
	}

	return db, nil
}

// PostgresDatabase reads recipes from two tables: recipes(recipe_id,
// item_name) for outputs and recipe_inputs(recipe_id, item_name) for
// ingredients.
type PostgresDatabase struct {
	db *sql.DB
}

func NewPostgresDatabase(db *sql.DB) port.RecipeDatabase {
	return &PostgresDatabase{db: db}
}

// ItemForRecipe resolves a recipe's output item. An unknown recipe id
// returns "" so the caller can mark the finding unresolved.
func (p *PostgresDatabase) ItemForRecipe(ctx context.Context, recipeID int) (string, error) {
	var item string
	err := p.db.QueryRowContext(ctx,
		"SELECT item_name FROM recipes WHERE recipe_id = $1", recipeID).Scan(&item)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve recipe %d: %w", recipeID, err)
	}
	return item, nil
}

// Consumers returns the items whose recipes take the given item as input.
func (p *PostgresDatabase) Consumers(ctx context.Context, item string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT DISTINCT r.item_name
		 FROM recipes r
		 JOIN recipe_inputs ri ON ri.recipe_id = r.recipe_id
		 WHERE ri.item_name = $1
		 ORDER BY r.item_name`, item)
	if err != nil {
		return nil, fmt.Errorf("failed to query consumers of %s: %w", item, err)
	}
	defer rows.Close()

	var consumers []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan consumer row: %w", err)
		}
		consumers = append(consumers, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read consumer rows: %w", err)
	}
	return consumers, nil
}

// Ping checks database health.
func (p *PostgresDatabase) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

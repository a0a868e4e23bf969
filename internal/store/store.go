// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"nexus-backend/internal/domain"
)

// Repository defines the interface for persisting knowledge base documents
// and the chatbot system instructions.
type Repository interface {
	// GetAllCategories retrieves content for every knowledge category.
	// The returned map always contains exactly the fixed category keys;
	// categories without stored content map to the empty string.
	GetAllCategories(ctx context.Context) (map[string]string, error)

	// GetCategory retrieves content for a single category. Unknown
	// categories are an error.
	GetCategory(ctx context.Context, category string) (string, error)

	// SaveCategory stores content for a category, recording who changed it.
	SaveCategory(ctx context.Context, category, content, updatedBy string) error

	// DeleteCategory resets a category to empty content.
	DeleteCategory(ctx context.Context, category string) error

	// GetInstructions retrieves the current system instructions. When none
	// have been saved it returns empty content with version 0.
	GetInstructions(ctx context.Context) (*domain.Instructions, error)

	// SaveInstructions stores new system instructions and returns the new
	// version number.
	SaveInstructions(ctx context.Context, content, updatedBy string) (int, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

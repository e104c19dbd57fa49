package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/fleetgrid/fleetd/internal/infrastructure/database"
)

// NewTestDB opens a fresh in-memory sqlite database, migrated and closed
// automatically at test cleanup.
func NewTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close(db)
	})
	return db
}

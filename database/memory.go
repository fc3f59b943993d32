package database

import (
	"fmt"
	"strings"

	"celengan/config"

	"gorm.io/gorm"
)

// OpenInMemory returns a migrated, private in-memory sqlite store.
// name keeps concurrently opened stores apart.
func OpenInMemory(name string) (*gorm.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_").Replace(name)
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		Close(db)
		return nil, err
	}
	return db, nil
}

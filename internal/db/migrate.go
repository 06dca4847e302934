package db

import (
	"fmt"
)

// Migrate tworzy/aktualizuje schemat bazy audytu.
func (h *Handle) Migrate() error {
	if err := h.DB.AutoMigrate(
		&FeedRun{},
		&StOffer{},
		&SkipIssue{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}
	return nil
}

// internal/db/models.go
package db

import "time"

// feed_runs – jeden wiersz na przebieg
type FeedRun struct {
	RunID         string `gorm:"primaryKey;size:36"`
	StartedAt     time.Time
	FinishedAt    time.Time
	Output        string
	Categories    int
	Images        int
	Products      int
	Offers        int
	Skipped       int
	FailedSources int
	Status        string `gorm:"index;size:16"` // ok | failed
	Error         string `gorm:"type:text"`
}

const (
	RunOK     = "ok"
	RunFailed = "failed"
)

// st_offers – oferty ostatniego przebiegu (staging, przebudowywany co run)
type StOffer struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index;size:36"`
	OfferID    string `gorm:"index"`
	Brand      string
	CategoryID string
	Price      string
	Stock      int
	Preorder   bool
	HasPicture bool
}

// skip_issues – rekordy odrzucone w ostatnim przebiegu
type SkipIssue struct {
	ID      uint   `gorm:"primaryKey"`
	RunID   string `gorm:"index;size:36"`
	Key     string `gorm:"index"`
	Brand   string
	Reason  string `gorm:"index"`
	Details string `gorm:"type:text"`
}

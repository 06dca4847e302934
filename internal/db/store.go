package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bartek5186/ymlfeed/internal/feed"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const batchSize = 500

// Store zapisuje raport przebiegu; implementuje feed.Sink.
type Store struct {
	log zerolog.Logger
	db  *gorm.DB
}

func NewStore(log zerolog.Logger, h *Handle) *Store {
	return &Store{log: log.With().Str("component", "audit").Logger(), db: h.DB}
}

func (s *Store) Name() string { return "audit" }

// Flush: pełny rebuild st_offers i skip_issues + nowy wiersz feed_runs, w jednej transakcji.
// Nieudany przebieg dopisuje tylko feed_runs; staging zostaje z ostatniego zapisanego feedu.
func (s *Store) Flush(ctx context.Context, r *feed.Report, offers []feed.Offer) error {
	if !r.OK() {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(runRow(r)).Error; err != nil {
				return fmt.Errorf("insert feed_runs: %w", err)
			}
			s.log.Warn().Str("run_id", r.RunID).Str("error", r.Err.Error()).Msg("audyt: przebieg nieudany")
			return nil
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// HARD DELETE poprzedniego stanu
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&StOffer{}).Error; err != nil {
			return fmt.Errorf("purge st_offers: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SkipIssue{}).Error; err != nil {
			return fmt.Errorf("purge skip_issues: %w", err)
		}

		if len(offers) > 0 {
			rows := make([]StOffer, 0, len(offers))
			for _, o := range offers {
				rows = append(rows, StOffer{
					RunID:      r.RunID,
					OfferID:    o.ID,
					Brand:      o.Brand,
					CategoryID: o.CategoryID,
					Price:      o.Price,
					Stock:      firstStock(o),
					Preorder:   o.Preorder == "1",
					HasPicture: o.Picture != "",
				})
			}
			if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
				return fmt.Errorf("insert st_offers: %w", err)
			}
		}

		if len(r.Skipped) > 0 {
			issues := make([]SkipIssue, 0, len(r.Skipped))
			for _, sk := range r.Skipped {
				issues = append(issues, SkipIssue{
					RunID:   r.RunID,
					Key:     sk.Key,
					Brand:   sk.Brand,
					Reason:  sk.Reason,
					Details: sk.Details,
				})
			}
			if err := tx.CreateInBatches(&issues, batchSize).Error; err != nil {
				return fmt.Errorf("insert skip_issues: %w", err)
			}
		}

		if err := tx.Create(runRow(r)).Error; err != nil {
			return fmt.Errorf("insert feed_runs: %w", err)
		}

		s.log.Info().
			Str("run_id", r.RunID).
			Int("offers", len(offers)).
			Int("skipped", len(r.Skipped)).
			Msg("audyt zapisany")
		return nil
	})
}

func runRow(r *feed.Report) *FeedRun {
	run := &FeedRun{
		RunID:         r.RunID,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Output:        r.Output,
		Categories:    r.Categories,
		Images:        r.Images,
		Products:      r.Products,
		Offers:        r.Offers,
		Skipped:       len(r.Skipped),
		FailedSources: r.FailedSources,
		Status:        RunOK,
	}
	if r.Err != nil {
		run.Status = RunFailed
		run.Error = r.Err.Error()
	}
	return run
}

func firstStock(o feed.Offer) int {
	if len(o.Warehouses) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(o.Warehouses[0].Quantity)
	return n
}

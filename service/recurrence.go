package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"celengan/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SweepResult outcome of one recurrence sweep
type SweepResult struct {
	Date      string   `json:"date"`
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// SweepReporter is notified when a sweep had failing rows
type SweepReporter interface {
	ReportSweep(ctx context.Context, result *SweepResult) error
}

var errNotDue = errors.New("recurring row not due")

// NextOccurrence advances current by one period of freq. MONTHLY keeps
// anchorDay as the day of month, clamped to the length of shorter months.
func NextOccurrence(freq models.Frequency, current time.Time, anchorDay int) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return current.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return current.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		y, m, _ := current.Date()
		// day 1 never overflows, so AddDate is safe here
		first := time.Date(y, m, 1, 0, 0, 0, 0, current.Location()).AddDate(0, 1, 0)
		day := anchorDay
		if last := daysIn(first.Year(), first.Month()); day > last {
			day = last
		}
		if day < 1 {
			day = 1
		}
		return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, current.Location()), nil
	}
	return time.Time{}, invalid(CodeInvalidFrequency, fmt.Sprintf("unknown frequency %q", freq))
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Today is the current calendar date in the ledger's time zone
func (s *LedgerService) Today() time.Time {
	return models.DateOf(s.now(), s.loc)
}

// AdvanceDueRecurring materializes every due recurring template. Each
// occurrence commits on its own; a failing template is logged and skipped.
// At most maxCatchUp occurrences of one template are posted per run; a
// template further behind than that is continued by the next run. Otherwise
// running it again on the same day finds nothing due.
func (s *LedgerService) AdvanceDueRecurring(ctx context.Context) (*SweepResult, error) {
	today := s.Today()
	result := &SweepResult{Date: today.Format("2006-01-02")}

	var ids []string
	err := s.db.WithContext(ctx).Model(&models.RecurringTransaction{}).
		Where("next_occurrence_date <= ?", today).
		Where("end_date IS NULL OR end_date >= ?", today).
		Order("next_occurrence_date ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load due recurring transactions: %w", err)
	}

	for _, id := range ids {
		for i := 0; i < s.maxCatchUp; i++ {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			err := s.advanceOne(ctx, id, today)
			if errors.Is(err, errNotDue) {
				break
			}
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				log.Printf("recurring %s: advance failed: %v", id, err)
				break
			}
			result.Processed++
		}
	}

	log.Printf("recurring sweep %s: processed=%d failed=%d", result.Date, result.Processed, result.Failed)

	if result.Failed > 0 && s.reporter != nil {
		if err := s.reporter.ReportSweep(ctx, result); err != nil {
			log.Printf("warning: report recurring sweep: %v", err)
		}
	}
	return result, nil
}

// advanceOne posts a single occurrence of the template and moves its
// schedule one period forward. It returns errNotDue when there is nothing to do.
func (s *LedgerService) advanceOne(ctx context.Context, id string, today time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.RecurringTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&r).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotDue
		}
		if err != nil {
			return fmt.Errorf("load recurring: %w", err)
		}
		// another sweep may have advanced it since the candidate list was read
		if !r.DueOn(today) {
			return errNotDue
		}

		next, err := NextOccurrence(r.Frequency, r.NextOccurrenceDate, r.StartDate.Day())
		if err != nil {
			return err
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", r.AccountID).
			First(&models.Account{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(CodeAccountNotFound, "account not found")
		}
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}

		entry := models.Transaction{
			AccountID:       r.AccountID,
			CategoryID:      r.CategoryID,
			Type:            r.Type,
			Amount:          r.Amount,
			Description:     models.RecurringDescriptionPrefix + r.Description,
			TransactionDate: today,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if err := adjustBalance(tx, r.AccountID, entry.SignedAmount()); err != nil {
			return err
		}

		res := tx.Model(&models.RecurringTransaction{}).
			Where("id = ? AND next_occurrence_date = ?", r.ID, r.NextOccurrenceDate).
			Update("next_occurrence_date", next)
		if res.Error != nil {
			return fmt.Errorf("advance schedule: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			// rolls back the posting above
			return errNotDue
		}
		return nil
	})
}

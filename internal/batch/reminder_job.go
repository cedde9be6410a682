package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"origination-engine/internal/domain/application"
	"origination-engine/internal/domain/schedule"
	"origination-engine/internal/pkg/apperrors"
)

const dueSoonWindow = 3 * 24 * time.Hour

// PaymentReminderJob scans disbursed loans and notifies borrowers about
// installments that are due soon or already overdue. It only publishes
// notifications; stored installment status is never touched here.
type PaymentReminderJob struct {
	repo     application.Repository
	notifier application.Notifier
	logger   *slog.Logger
}

func NewPaymentReminderJob(repo application.Repository, notifier application.Notifier, logger *slog.Logger) *PaymentReminderJob {
	if repo == nil || notifier == nil || logger == nil {
		panic("PaymentReminderJob dependencies cannot be nil")
	}
	return &PaymentReminderJob{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With("job", "PaymentReminder"),
	}
}

func (j *PaymentReminderJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting daily payment reminder job.")

	ids, err := j.repo.GetAllDisbursedIDs(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to get disbursed application IDs, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to get disbursed applications: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched disbursed application IDs.", slog.Int("count", len(ids)))

	if len(ids) == 0 {
		j.logger.InfoContext(ctx, "No disbursed applications to process.")
		return nil
	}

	var wg sync.WaitGroup
	var dueSoonCount, overdueCount, errorCount int32
	now := time.Now()

	for _, id := range ids {
		wg.Add(1)
		go func(applicationID int64) {
			defer wg.Done()
			logCtx := j.logger.With(slog.Int64("applicationID", applicationID))

			app, err := j.repo.GetApplicationByID(ctx, applicationID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					logCtx.WarnContext(ctx, "Application disappeared during reminder run", slog.Any("error", err))
				} else {
					logCtx.ErrorContext(ctx, "Failed to load application", slog.Any("error", err))
					atomic.AddInt32(&errorCount, 1)
				}
				return
			}

			installments, err := j.repo.GetScheduleByApplicationID(ctx, applicationID)
			if err != nil {
				logCtx.ErrorContext(ctx, "Failed to load schedule", slog.Any("error", err))
				atomic.AddInt32(&errorCount, 1)
				return
			}

			for _, inst := range installments {
				var title, message string
				switch {
				case inst.EffectiveStatus(now) == schedule.InstallmentOverdue:
					title = "Installment overdue"
					message = fmt.Sprintf("Installment %d of loan #%d for %s was due on %s.",
						inst.Sequence, applicationID, inst.Total.StringFixed(2), inst.DueDate.Format(time.RFC3339[:10]))
					atomic.AddInt32(&overdueCount, 1)
				case inst.Status == schedule.InstallmentPending && inst.DueDate.After(now) && inst.DueDate.Sub(now) <= dueSoonWindow:
					title = "Installment due soon"
					message = fmt.Sprintf("Installment %d of loan #%d for %s is due on %s.",
						inst.Sequence, applicationID, inst.Total.StringFixed(2), inst.DueDate.Format(time.RFC3339[:10]))
					atomic.AddInt32(&dueSoonCount, 1)
				default:
					continue
				}

				if err := j.notifier.Notify(ctx, application.Notification{
					UserID:  app.BorrowerID,
					Title:   title,
					Message: message,
				}); err != nil {
					logCtx.WarnContext(ctx, "Failed to publish reminder", slog.Int("sequence", inst.Sequence), slog.Any("error", err))
					atomic.AddInt32(&errorCount, 1)
				}
			}
		}(id)
	}

	wg.Wait()
	duration := time.Since(startTime)
	summaryLog := j.logger.With(
		slog.Duration("duration", duration),
		slog.Int("total_disbursed", len(ids)),
		slog.Int("due_soon_reminders", int(atomic.LoadInt32(&dueSoonCount))),
		slog.Int("overdue_reminders", int(atomic.LoadInt32(&overdueCount))),
		slog.Int("errors_encountered", int(atomic.LoadInt32(&errorCount))),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Payment reminder job finished with errors.")
		return fmt.Errorf("job completed with %d errors", atomic.LoadInt32(&errorCount))
	}
	summaryLog.InfoContext(ctx, "Payment reminder job finished successfully.")
	return nil
}

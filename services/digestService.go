package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/logger"
	"github.com/WWJD/models"
)

const (
	maxDigestSituations = 10
	digestConcurrency   = 8
)

type DigestStore interface {
	DigestRecipients(ctx context.Context, frequency string) ([]models.UserProfile, error)
	DigestSituations(ctx context.Context, userID int, since time.Time, limit int) ([]models.Situation, error)
}

type DigestReport struct {
	Recipients int
	Sent       int
	Skipped    int
	Failed     int
}

type DigestService struct {
	store DigestStore
	email EmailSender
	now   func() time.Time
	log   *logger.Logger
}

func NewDigestService(store DigestStore, email EmailSender, log *logger.Logger) *DigestService {
	return &DigestService{
		store: store,
		email: email,
		now:   time.Now,
		log:   log.With("service", "DigestService"),
	}
}

// Run emails every subscriber of frequency the situations on their followed
// topics from the last window. Users with nothing new are skipped. A failure
// for one user does not stop the others.
func (d *DigestService) Run(ctx context.Context, frequency string) (DigestReport, error) {
	if !models.ValidDigestFrequency(frequency) {
		return DigestReport{}, apperrors.Invalid("frequency", "frequency must be daily, weekly or monthly")
	}
	if !d.email.Enabled() {
		return DigestReport{}, ErrEmailDisabled
	}

	recipients, err := d.store.DigestRecipients(ctx, frequency)
	if err != nil {
		return DigestReport{}, err
	}
	since := d.now().Add(-models.DigestWindow(frequency))

	var sent, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(digestConcurrency)
	for _, user := range recipients {
		g.Go(func() error {
			situations, err := d.store.DigestSituations(gctx, user.User_Profile_ID, since, maxDigestSituations)
			if err != nil {
				failed.Add(1)
				d.log.Error("Failed to collect digest", "user_profile_id", user.User_Profile_ID, "error", err)
				return nil
			}
			if len(situations) == 0 {
				skipped.Add(1)
				return nil
			}
			if err := d.email.SendDigestEmail(gctx, user, situations); err != nil {
				failed.Add(1)
				d.log.Error("Failed to send digest", "user_profile_id", user.User_Profile_ID, "error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DigestReport{}, fmt.Errorf("digest: %w", err)
	}

	report := DigestReport{
		Recipients: len(recipients),
		Sent:       int(sent.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
	}
	d.log.Info("Digest finished",
		"frequency", frequency,
		"recipients", report.Recipients,
		"sent", report.Sent,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

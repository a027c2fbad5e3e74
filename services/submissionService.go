package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/logger"
	"github.com/WWJD/models"
)

var tracer = otel.Tracer("github.com/WWJD/services")

type Moderator interface {
	Moderate(ctx context.Context, text string) (ModerationResult, error)
}

type SimilarFinder interface {
	FindSimilar(ctx context.Context, question string, minMatches int) (*models.SituationCandidate, error)
}

type SituationRepository interface {
	GetSituation(ctx context.Context, id int) (models.Situation, error)
	CreateSituation(ctx context.Context, text string, guidance models.Guidance) (models.Situation, error)
}

// SituationNotifier is told about every newly stored situation.
type SituationNotifier interface {
	SituationCreated(situation models.Situation)
}

type SubmissionService struct {
	moderator  Moderator
	matcher    SimilarFinder
	generator  GuidanceGenerator
	situations SituationRepository
	notifier   SituationNotifier
	timeout    time.Duration
	log        *logger.Logger
}

type SubmissionDeps struct {
	Moderator  Moderator
	Matcher    SimilarFinder
	Generator  GuidanceGenerator
	Situations SituationRepository
	Notifier   SituationNotifier
	Timeout    time.Duration
	Log        *logger.Logger
}

func NewSubmissionService(deps SubmissionDeps) *SubmissionService {
	if deps.Timeout <= 0 {
		deps.Timeout = 30 * time.Second
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &SubmissionService{
		moderator:  deps.Moderator,
		matcher:    deps.Matcher,
		generator:  deps.Generator,
		situations: deps.Situations,
		notifier:   deps.Notifier,
		timeout:    deps.Timeout,
		log:        deps.Log.With("service", "SubmissionService"),
	}
}

// ValidateSituationText trims text and checks it against the length limit.
func ValidateSituationText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", apperrors.Invalid("situation", "situation is required")
	}
	if utf8.RuneCountInString(trimmed) > models.MaxSituationLength {
		return "", apperrors.Invalid("situation", "situation must be at most %d characters", models.MaxSituationLength)
	}
	return trimmed, nil
}

// Submit runs a situation through moderation, duplicate matching and
// generation. The upstream calls are bounded by the service timeout and are
// not cancelled when the caller goes away.
func (s *SubmissionService) Submit(ctx context.Context, text string) (models.Submission, error) {
	situation, err := ValidateSituationText(text)
	if err != nil {
		return models.Submission{}, err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "submission.submit")
	defer span.End()

	moderation, err := s.moderate(ctx, situation)
	if err != nil {
		return fail(span, err)
	}
	if !moderation.Allowed {
		span.SetAttributes(attribute.String("submission.outcome", string(models.OutcomeBlocked)))
		s.log.Info("Submission blocked by moderation", "category", moderation.Category)
		return models.Submission{
			ID:                nil,
			Situation:         situation,
			Response:          moderation.Guidance,
			Verses:            []string{},
			Tags:              []string{},
			Moderated:         true,
			Category:          moderation.Category,
			FlaggedCategories: moderation.FlaggedCategories,
			Outcome:           models.OutcomeBlocked,
		}, nil
	}

	match, err := s.match(ctx, situation)
	if err != nil {
		return fail(span, err)
	}
	if match != nil {
		existing, err := s.situations.GetSituation(ctx, match.Situation_ID)
		if err != nil {
			return fail(span, err)
		}
		span.SetAttributes(
			attribute.String("submission.outcome", string(models.OutcomeMatchedExisting)),
			attribute.Int("submission.matched_id", existing.Situation_ID),
		)
		result := models.SubmissionFromSituation(existing, models.OutcomeMatchedExisting)
		result.MatchedFrom = &models.MatchedFrom{ID: existing.Situation_ID, Situation: existing.Situation_Text}
		return result, nil
	}

	guidance, err := s.generate(ctx, situation)
	if err != nil {
		return fail(span, err)
	}

	created, err := s.persist(ctx, situation, guidance)
	if err != nil {
		return fail(span, err)
	}
	span.SetAttributes(
		attribute.String("submission.outcome", string(models.OutcomePersisted)),
		attribute.Int("submission.id", created.Situation_ID),
	)
	if s.notifier != nil {
		s.notifier.SituationCreated(created)
	}
	return models.SubmissionFromSituation(created, models.OutcomePersisted), nil
}

func fail(span trace.Span, err error) (models.Submission, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return models.Submission{}, err
}

func (s *SubmissionService) moderate(ctx context.Context, text string) (ModerationResult, error) {
	ctx, span := tracer.Start(ctx, "submission.moderate")
	defer span.End()
	result, err := s.moderator.Moderate(ctx, text)
	span.SetAttributes(attribute.Bool("moderation.allowed", result.Allowed))
	return result, err
}

func (s *SubmissionService) match(ctx context.Context, text string) (*models.SituationCandidate, error) {
	ctx, span := tracer.Start(ctx, "submission.match")
	defer span.End()
	match, err := s.matcher.FindSimilar(ctx, text, 0)
	span.SetAttributes(attribute.Bool("match.found", match != nil))
	return match, err
}

func (s *SubmissionService) generate(ctx context.Context, text string) (models.Guidance, error) {
	ctx, span := tracer.Start(ctx, "submission.generate")
	defer span.End()
	guidance, err := s.generator.Generate(ctx, text)
	if err != nil {
		s.log.Error("Guidance generation failed", "error", err)
		return models.Guidance{}, apperrors.Upstream("generator", err)
	}
	if guidance.Verses == nil {
		guidance.Verses = []string{}
	}
	guidance.Tags = normalizeTags(guidance.Tags)
	return guidance, nil
}

func (s *SubmissionService) persist(ctx context.Context, text string, guidance models.Guidance) (models.Situation, error) {
	ctx, span := tracer.Start(ctx, "submission.persist")
	defer span.End()
	return s.situations.CreateSituation(ctx, text, guidance)
}

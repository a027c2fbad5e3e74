package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/logger"
)

//go:embed moderationGuidance.yaml
var moderationGuidanceYAML []byte

// categoryPriority orders moderation categories from most to least severe.
var categoryPriority = []string{
	"sexual/minors",
	"self-harm/intent",
	"self-harm/instructions",
	"illicit/violent",
	"violence/graphic",
	"hate/threatening",
	"harassment/threatening",
	"self-harm",
	"violence",
	"sexual",
	"hate",
	"harassment",
	"illicit",
}

type ModerationClassification struct {
	Flagged    bool
	Categories map[string]bool
}

type ModerationClassifier interface {
	Classify(ctx context.Context, text string) (ModerationClassification, error)
}

type ModerationResult struct {
	Allowed           bool
	Category          string
	Guidance          string
	FlaggedCategories []string
}

type guidanceCatalog struct {
	Fallback   string            `yaml:"fallback"`
	Categories map[string]string `yaml:"categories"`
}

func loadGuidanceCatalog(raw []byte) (guidanceCatalog, error) {
	var catalog guidanceCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return guidanceCatalog{}, fmt.Errorf("parse moderation guidance: %w", err)
	}
	if strings.TrimSpace(catalog.Fallback) == "" {
		return guidanceCatalog{}, fmt.Errorf("moderation guidance has no fallback")
	}
	return catalog, nil
}

// GuidanceFor resolves the canned response for category, falling back to the
// parent category and then to the generic response.
func (c guidanceCatalog) GuidanceFor(category string) string {
	if g, ok := c.Categories[category]; ok {
		return g
	}
	if parent, _, found := strings.Cut(category, "/"); found {
		if g, ok := c.Categories[parent]; ok {
			return g
		}
	}
	return c.Fallback
}

// PrimaryCategory picks the most severe flagged category. When none of the
// flagged categories is ranked, the first one wins.
func PrimaryCategory(flagged []string) string {
	if len(flagged) == 0 {
		return ""
	}
	present := make(map[string]struct{}, len(flagged))
	for _, c := range flagged {
		present[c] = struct{}{}
	}
	for _, c := range categoryPriority {
		if _, ok := present[c]; ok {
			return c
		}
	}
	return flagged[0]
}

type ModerationGate struct {
	classifier ModerationClassifier
	catalog    guidanceCatalog
	failOpen   bool
	log        *logger.Logger
}

func NewModerationGate(classifier ModerationClassifier, failOpen bool, log *logger.Logger) (*ModerationGate, error) {
	if classifier == nil {
		return nil, fmt.Errorf("moderation classifier required")
	}
	catalog, err := loadGuidanceCatalog(moderationGuidanceYAML)
	if err != nil {
		return nil, err
	}
	return &ModerationGate{
		classifier: classifier,
		catalog:    catalog,
		failOpen:   failOpen,
		log:        log.With("service", "ModerationGate"),
	}, nil
}

// Moderate classifies text. The returned error is non-nil only when the
// classifier failed and the gate is configured to fail closed.
func (g *ModerationGate) Moderate(ctx context.Context, text string) (ModerationResult, error) {
	classification, err := g.classifier.Classify(ctx, text)
	if err != nil {
		return g.classifierFailed(err)
	}
	if !classification.Flagged {
		return ModerationResult{Allowed: true}, nil
	}

	flagged := make([]string, 0, len(classification.Categories))
	for category, on := range classification.Categories {
		if on {
			flagged = append(flagged, category)
		}
	}
	if len(flagged) == 0 {
		return g.classifierFailed(errFlaggedWithoutCategory)
	}
	sort.Strings(flagged)

	primary := PrimaryCategory(flagged)
	return ModerationResult{
		Allowed:           false,
		Category:          primary,
		Guidance:          g.catalog.GuidanceFor(primary),
		FlaggedCategories: flagged,
	}, nil
}

var errFlaggedWithoutCategory = errors.New("content flagged without any category")

func (g *ModerationGate) classifierFailed(err error) (ModerationResult, error) {
	if g.failOpen {
		g.log.Error("Moderation classifier failed, allowing content", "error", err)
		return ModerationResult{Allowed: true}, nil
	}
	return ModerationResult{}, apperrors.Upstream("moderation", err)
}

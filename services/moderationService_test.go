package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/logger"
)

type fakeClassifier struct {
	result ModerationClassification
	err    error
}

func (f fakeClassifier) Classify(ctx context.Context, text string) (ModerationClassification, error) {
	return f.result, f.err
}

func flagged(categories ...string) ModerationClassification {
	c := ModerationClassification{Flagged: true, Categories: map[string]bool{}}
	for _, cat := range categories {
		c.Categories[cat] = true
	}
	if _, ok := c.Categories["illicit"]; !ok {
		c.Categories["illicit"] = false
	}
	return c
}

func TestModerate(t *testing.T) {
	catalog, err := loadGuidanceCatalog(moderationGuidanceYAML)
	require.NoError(t, err)

	tests := []struct {
		name             string
		classification   ModerationClassification
		expectedAllowed  bool
		expectedCategory string
		expectedGuidance string
	}{
		{
			name:            "Not flagged",
			classification:  ModerationClassification{Flagged: false, Categories: map[string]bool{"violence": false}},
			expectedAllowed: true,
		},
		{
			name:             "Violence only",
			classification:   flagged("violence"),
			expectedCategory: "violence",
			expectedGuidance: catalog.Categories["violence"],
		},
		{
			name:             "Priority respected",
			classification:   flagged("violence", "self-harm/intent"),
			expectedCategory: "self-harm/intent",
			expectedGuidance: catalog.Categories["self-harm/intent"],
		},
		{
			name:             "Self-harm",
			classification:   flagged("self-harm"),
			expectedCategory: "self-harm",
			expectedGuidance: catalog.Categories["self-harm"],
		},
		{
			name:             "Unranked subcategory falls back to parent",
			classification:   flagged("harassment/stalking"),
			expectedCategory: "harassment/stalking",
			expectedGuidance: catalog.Categories["harassment"],
		},
		{
			name:             "Unknown category gets generic guidance",
			classification:   flagged("spam"),
			expectedCategory: "spam",
			expectedGuidance: catalog.Fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, err := NewModerationGate(fakeClassifier{result: tt.classification}, true, logger.Nop())
			require.NoError(t, err)

			result, err := gate.Moderate(context.Background(), "text")
			require.NoError(t, err)
			assert.Equal(t, tt.expectedAllowed, result.Allowed)
			assert.Equal(t, tt.expectedCategory, result.Category)
			assert.Equal(t, tt.expectedGuidance, result.Guidance)
			if !tt.expectedAllowed {
				assert.NotEmpty(t, result.Guidance)
				assert.Contains(t, result.FlaggedCategories, tt.expectedCategory)
			}
		})
	}
}

func TestModerateFlaggedCategoriesSorted(t *testing.T) {
	gate, err := NewModerationGate(fakeClassifier{result: flagged("violence", "hate", "self-harm")}, true, logger.Nop())
	require.NoError(t, err)

	result, err := gate.Moderate(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []string{"hate", "self-harm", "violence"}, result.FlaggedCategories)
	assert.Equal(t, "self-harm", result.Category)
}

func TestModerateClassifierFailure(t *testing.T) {
	classifier := fakeClassifier{err: errors.New("moderation api unavailable")}

	t.Run("Fail open allows", func(t *testing.T) {
		gate, err := NewModerationGate(classifier, true, logger.Nop())
		require.NoError(t, err)

		result, err := gate.Moderate(context.Background(), "text")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("Fail closed errors", func(t *testing.T) {
		gate, err := NewModerationGate(classifier, false, logger.Nop())
		require.NoError(t, err)

		_, err = gate.Moderate(context.Background(), "text")
		var upstream *apperrors.UpstreamError
		assert.ErrorAs(t, err, &upstream)
	})
}

func TestModerateFlaggedWithoutCategory(t *testing.T) {
	classifier := fakeClassifier{result: ModerationClassification{
		Flagged:    true,
		Categories: map[string]bool{"violence": false, "hate": false},
	}}

	t.Run("Fail open allows", func(t *testing.T) {
		gate, err := NewModerationGate(classifier, true, logger.Nop())
		require.NoError(t, err)

		result, err := gate.Moderate(context.Background(), "text")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Empty(t, result.Category)
	})

	t.Run("Fail closed errors", func(t *testing.T) {
		gate, err := NewModerationGate(classifier, false, logger.Nop())
		require.NoError(t, err)

		_, err = gate.Moderate(context.Background(), "text")
		var upstream *apperrors.UpstreamError
		assert.ErrorAs(t, err, &upstream)
	})
}

func TestPrimaryCategory(t *testing.T) {
	assert.Equal(t, "", PrimaryCategory(nil))
	assert.Equal(t, "sexual/minors", PrimaryCategory([]string{"hate", "sexual/minors", "violence"}))
	assert.Equal(t, "other", PrimaryCategory([]string{"other", "unlisted"}))
}

func TestGuidanceCatalogCoversPriorityList(t *testing.T) {
	catalog, err := loadGuidanceCatalog(moderationGuidanceYAML)
	require.NoError(t, err)
	for _, category := range categoryPriority {
		assert.NotEmpty(t, catalog.Categories[category], category)
	}
}

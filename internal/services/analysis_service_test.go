package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	hits []string
}

func (r *recordingObserver) ObserveRule(engine, rule string) {
	r.hits = append(r.hits, engine+":"+rule)
}

func TestAnalysisService_Analyze(t *testing.T) {
	service := NewAnalysisService()
	require.NoError(t, service.Initialize())

	tests := []struct {
		name      string
		text      string
		sentiment string
		keywords  []string
	}{
		{
			name:      "stress rule",
			text:      "I'm so stressed about everything",
			sentiment: "stressed",
			keywords:  []string{"stress"},
		},
		{
			name:      "stress rule wins over exam rule",
			text:      "I'm anxious about exams",
			sentiment: "stressed",
			keywords:  []string{"anxious", "exam"},
		},
		{
			name:      "exam rule",
			text:      "Three assignments due before the deadline",
			sentiment: "anxious",
			keywords:  []string{"assignment", "deadline"},
		},
		{
			name:      "loneliness rule",
			text:      "Feeling homesick and lonely this week",
			sentiment: "lonely",
			keywords:  []string{"lonely", "homesick"},
		},
		{
			name:      "sleep rule",
			text:      "So tired, barely got any sleep",
			sentiment: "tired",
			keywords:  []string{"sleep", "tired"},
		},
		{
			name:      "negative rules beat positive rule",
			text:      "Had a great day but I am exhausted",
			sentiment: "tired",
			keywords:  []string{"exhausted", "great"},
		},
		{
			name:      "positive rule",
			text:      "Great meditation session, feeling centered and calm",
			sentiment: "positive",
			keywords:  []string{"calm", "centered", "great"},
		},
		{
			name:      "case insensitive",
			text:      "PANIC",
			sentiment: "stressed",
			keywords:  []string{"panic"},
		},
		{
			name:      "no match",
			text:      "Went to the library",
			sentiment: SentimentNeutral,
			keywords:  []string{},
		},
		{
			name:      "empty text",
			text:      "",
			sentiment: SentimentNeutral,
			keywords:  []string{},
		},
		{
			name:      "whitespace text",
			text:      "   ",
			sentiment: SentimentNeutral,
			keywords:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := service.Analyze(context.Background(), tt.text, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.sentiment, analysis.Sentiment)
			assert.Equal(t, tt.keywords, analysis.Keywords)
			assert.NotEmpty(t, analysis.Recommendations)
		})
	}
}

func TestAnalysisService_DefaultBranch(t *testing.T) {
	service := NewAnalysisService()

	analysis, err := service.Analyze(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Equal(t, SentimentNeutral, analysis.Sentiment)
	assert.Empty(t, analysis.Keywords)
	assert.Equal(t, DefaultRecommendations, analysis.Recommendations)

	analysis.Recommendations[0] = "mutated"
	assert.Equal(t, "Try a 10-minute breathing exercise", DefaultRecommendations[0])
}

func TestAnalysisService_MoodDoesNotAffectClassification(t *testing.T) {
	service := NewAnalysisService()
	text := "worried about the test"

	first, err := service.Analyze(context.Background(), text, 1)
	require.NoError(t, err)
	for mood := 2; mood <= 10; mood++ {
		got, err := service.Analyze(context.Background(), text, mood)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestAnalysisService_RuleOrder(t *testing.T) {
	service := NewAnalysisService()

	assert.Equal(t,
		[]string{"stress", "exam", "loneliness", "sleep", "sadness", "frustration", "positive"},
		service.RuleNames())
	assert.Equal(t, "stressed", service.SentimentFor("stress"))
	assert.Equal(t, "", service.SentimentFor("missing"))
}

func TestAnalysisService_Observer(t *testing.T) {
	service := NewAnalysisService()
	observer := &recordingObserver{}
	service.SetObserver(observer)

	_, _ = service.Analyze(context.Background(), "stress", 3)
	_, _ = service.Analyze(context.Background(), "nothing here", 3)

	assert.Equal(t, []string{"analysis:stress", "analysis:"}, observer.hits)
}

func TestAnalysisService_Name(t *testing.T) {
	assert.Equal(t, "analysis", NewAnalysisService().Name())
}

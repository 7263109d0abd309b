package services

import (
	"context"

	"mindfulu/internal/logger"
	"mindfulu/internal/rules"
	"mindfulu/pkg/mindtypes"
)

// RuleObserver is notified of every classification an engine makes.
// The metrics collector implements it.
type RuleObserver interface {
	ObserveRule(engine, rule string)
}

// SentimentNeutral is the sentiment returned when no lexicon rule matches.
const SentimentNeutral = "neutral"

// sentimentResult is what a lexicon rule contributes to an Analysis.
type sentimentResult struct {
	Sentiment       string
	Recommendations []string
}

// DefaultRecommendations are offered when an entry matches no lexicon rule.
var DefaultRecommendations = []string{
	"Try a 10-minute breathing exercise",
	"Take a short walk outside",
	"Practice gratitude journaling",
	"Listen to calming music",
}

// journalLexicon is evaluated top to bottom; the first rule with a trigger in the
// entry decides the sentiment. Negative rules come before the positive one.
func journalLexicon() *rules.Table[sentimentResult] {
	return rules.NewTable("analysis",
		sentimentResult{Sentiment: SentimentNeutral, Recommendations: DefaultRecommendations},
		rules.Rule[sentimentResult]{
			Name:     "stress",
			Triggers: []string{"stress", "anxious", "anxiety", "overwhelm", "panic", "worried"},
			Result: sentimentResult{
				Sentiment: "stressed",
				Recommendations: []string{
					"Try 4-7-8 breathing for a few rounds",
					"Take a short break every hour",
					"Do a 5-minute mindfulness meditation",
				},
			},
		},
		rules.Rule[sentimentResult]{
			Name:     "exam",
			Triggers: []string{"exam", "test", "assignment", "deadline", "grade"},
			Result: sentimentResult{
				Sentiment: "anxious",
				Recommendations: []string{
					"Review your notes briefly instead of cramming",
					"Break your workload into small timed sessions",
					"Get a good night's sleep before the exam",
				},
			},
		},
		rules.Rule[sentimentResult]{
			Name:     "loneliness",
			Triggers: []string{"lonely", "alone", "isolated", "homesick"},
			Result: sentimentResult{
				Sentiment: "lonely",
				Recommendations: []string{
					"Reach out to a classmate or friend today",
					"Join a study group or campus club",
					"Connect with campus support resources",
				},
			},
		},
		rules.Rule[sentimentResult]{
			Name:     "sleep",
			Triggers: []string{"sleep", "tired", "exhausted", "insomnia"},
			Result: sentimentResult{
				Sentiment: "tired",
				Recommendations: []string{
					"Limit screens an hour before bed",
					"Keep a consistent bedtime routine",
					"Aim for 7-9 hours of sleep",
				},
			},
		},
		rules.Rule[sentimentResult]{
			Name:     "sadness",
			Triggers: []string{"sad", "depressed", "hopeless", "down", "cry"},
			Result: sentimentResult{
				Sentiment: "low",
				Recommendations: []string{
					"Talk to someone you trust about how you feel",
					"Write down three small things that went okay today",
					"Consider booking time with a campus counselor",
				},
			},
		},
		rules.Rule[sentimentResult]{
			Name:     "frustration",
			Triggers: []string{"angry", "frustrated", "annoyed", "irritated"},
			Result: sentimentResult{
				Sentiment: "frustrated",
				Recommendations: []string{
					"Step away for a short walk before reacting",
					"Try progressive muscle relaxation",
					"Name what is within your control right now",
				},
			},
		},
		rules.Rule[sentimentResult]{
			Name: "positive",
			Triggers: []string{
				"happy", "grateful", "confident", "productive", "calm",
				"excited", "proud", "centered", "relaxed", "great",
			},
			Result: sentimentResult{
				Sentiment: "positive",
				Recommendations: []string{
					"Note what helped today so you can repeat it",
					"Share the good news with someone",
					"Keep up your current routine",
				},
			},
		},
	)
}

// AnalysisService classifies journal entries with an ordered keyword lexicon.
// It is pure: no state, no I/O, and it always returns a result.
type AnalysisService struct {
	initialized bool
	table       *rules.Table[sentimentResult]
	observer    RuleObserver
}

// NewAnalysisService creates an AnalysisService using the built-in lexicon.
func NewAnalysisService() *AnalysisService {
	return &AnalysisService{
		table: journalLexicon(),
	}
}

// Name returns the service name "analysis" for registration.
func (a *AnalysisService) Name() string {
	return "analysis"
}

// Initialize marks the service ready. The lexicon is built at construction.
func (a *AnalysisService) Initialize() error {
	a.initialized = true
	logger.Debug("AnalysisService initialized", "rules", len(a.table.Rules()))
	return nil
}

// SetObserver attaches an observer notified of every classification.
func (a *AnalysisService) SetObserver(observer RuleObserver) {
	a.observer = observer
}

// Analyze classifies text. The first lexicon rule with a trigger in the text
// decides the sentiment and recommendations; keywords are every trigger found,
// in lexicon order. mood is accepted for future weighting but does not change
// the classification.
func (a *AnalysisService) Analyze(_ context.Context, text string, mood int) (mindtypes.Analysis, error) {
	match := a.table.Evaluate(text)

	logger.RuleMatched(a.table.Name(), match.Rule)
	if a.observer != nil {
		a.observer.ObserveRule(a.table.Name(), match.Rule)
	}
	logger.ServiceOperation("analysis", "analyze", "mood", mood, "sentiment", match.Result.Sentiment)

	return mindtypes.Analysis{
		Sentiment:       match.Result.Sentiment,
		Keywords:        match.Keywords,
		Recommendations: append([]string(nil), match.Result.Recommendations...),
	}, nil
}

// RuleNames returns the lexicon rule names in evaluation order.
func (a *AnalysisService) RuleNames() []string {
	rs := a.table.Rules()
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// SentimentFor returns the sentiment label of the named rule, or "" if unknown.
func (a *AnalysisService) SentimentFor(rule string) string {
	for _, r := range a.table.Rules() {
		if r.Name == rule {
			return r.Result.Sentiment
		}
	}
	return ""
}

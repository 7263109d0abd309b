package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mindfulu/pkg/mindtypes"
)

// Mood bands used by the dashboard.
const (
	MoodBandLow    = "low"
	MoodBandMedium = "medium"
	MoodBandHigh   = "high"
)

const (
	trendLength  = 7
	keywordLimit = 5
)

// MoodPoint is one point of the mood trend.
type MoodPoint struct {
	Date time.Time `json:"date" yaml:"date"`
	Mood int       `json:"mood" yaml:"mood"`
}

// KeywordCount is how many analyzed entries mention a keyword.
type KeywordCount struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Count   int    `json:"count" yaml:"count"`
}

// Summary is the dashboard view of a session's journal and conversation.
type Summary struct {
	UserName          string         `json:"userName" yaml:"user_name"`
	EntryCount        int            `json:"entryCount" yaml:"entry_count"`
	ConversationCount int            `json:"conversationCount" yaml:"conversation_count"`
	AverageMood       float64        `json:"averageMood" yaml:"average_mood"`
	CurrentMood       int            `json:"currentMood" yaml:"current_mood"`
	MoodBand          string         `json:"moodBand" yaml:"mood_band"`
	LatestSentiment   string         `json:"latestSentiment" yaml:"latest_sentiment"`
	Streak            int            `json:"streak" yaml:"streak"`
	Trend             []MoodPoint    `json:"trend" yaml:"trend"`
	TopKeywords       []KeywordCount `json:"topKeywords" yaml:"top_keywords"`
	Recommendations   []string       `json:"recommendations" yaml:"recommendations"`
}

// MoodBand classifies a mood score: up to 3 is low, up to 7 medium, above that high.
func MoodBand(mood int) string {
	switch {
	case mood <= 3:
		return MoodBandLow
	case mood <= 7:
		return MoodBandMedium
	default:
		return MoodBandHigh
	}
}

// InsightService derives dashboard insights from application state.
type InsightService struct {
	initialized bool
}

// NewInsightService creates a new InsightService instance.
func NewInsightService() *InsightService {
	return &InsightService{}
}

// Name returns the service name "insight" for registration.
func (s *InsightService) Name() string {
	return "insight"
}

// Initialize marks the service ready.
func (s *InsightService) Initialize() error {
	s.initialized = true
	return nil
}

// Summarize computes the dashboard summary of state as of now.
func (s *InsightService) Summarize(state mindtypes.AppState, now time.Time) Summary {
	summary := Summary{
		EntryCount:      len(state.JournalEntries),
		Trend:           []MoodPoint{},
		TopKeywords:     []KeywordCount{},
		Recommendations: append([]string(nil), DefaultRecommendations...),
	}
	if state.User != nil {
		summary.UserName = state.User.Name
	}
	for _, msg := range state.ChatHistory {
		if msg.IsUser {
			summary.ConversationCount++
		}
	}

	if len(state.JournalEntries) == 0 {
		return summary
	}

	total := 0
	for _, e := range state.JournalEntries {
		total += e.Mood
	}
	summary.AverageMood = float64(total) / float64(len(state.JournalEntries))

	latest := state.JournalEntries[0]
	summary.CurrentMood = latest.Mood
	summary.MoodBand = MoodBand(latest.Mood)

	for _, e := range state.JournalEntries {
		if e.Analysis != nil {
			summary.LatestSentiment = e.Analysis.Sentiment
			summary.Recommendations = append([]string(nil), e.Analysis.Recommendations...)
			break
		}
	}

	summary.Trend = moodTrend(state.JournalEntries)
	summary.TopKeywords = topKeywords(state.JournalEntries)
	summary.Streak = dayStreak(state.JournalEntries, now)

	return summary
}

// moodTrend returns the moods of the latest entries, oldest first.
func moodTrend(entries []mindtypes.JournalEntry) []MoodPoint {
	n := len(entries)
	if n > trendLength {
		n = trendLength
	}
	trend := make([]MoodPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		trend = append(trend, MoodPoint{Date: entries[i].Timestamp, Mood: entries[i].Mood})
	}
	return trend
}

// topKeywords ranks keywords by how many entries mention them.
// Ties keep the order in which keywords were first seen, newest entry first.
func topKeywords(entries []mindtypes.JournalEntry) []KeywordCount {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if e.Analysis == nil {
			continue
		}
		for _, kw := range e.Analysis.Keywords {
			if _, ok := counts[kw]; !ok {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	result := make([]KeywordCount, 0, len(order))
	for _, kw := range order {
		result = append(result, KeywordCount{Keyword: kw, Count: counts[kw]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > keywordLimit {
		result = result[:keywordLimit]
	}
	return result
}

// dayStreak counts consecutive calendar days with at least one entry.
// The streak may end today or yesterday; a gap of a full day resets it.
func dayStreak(entries []mindtypes.JournalEntry, now time.Time) int {
	loc := now.Location()
	days := make(map[string]bool)
	for _, e := range entries {
		days[e.Timestamp.In(loc).Format("2006-01-02")] = true
	}

	day := now
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// RenderMarkdown formats a summary as a markdown document.
func (s *InsightService) RenderMarkdown(summary Summary) string {
	var b strings.Builder

	title := "Your wellbeing"
	if summary.UserName != "" {
		title = fmt.Sprintf("%s's wellbeing", summary.UserName)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "- **Journal entries:** %d\n", summary.EntryCount)
	fmt.Fprintf(&b, "- **Messages to your companion:** %d\n", summary.ConversationCount)
	fmt.Fprintf(&b, "- **Day streak:** %d\n", summary.Streak)
	if summary.EntryCount > 0 {
		fmt.Fprintf(&b, "- **Current mood:** %d/10 (%s)\n", summary.CurrentMood, summary.MoodBand)
		fmt.Fprintf(&b, "- **Average mood:** %.1f/10\n", summary.AverageMood)
	}
	if summary.LatestSentiment != "" {
		fmt.Fprintf(&b, "- **Latest sentiment:** %s\n", summary.LatestSentiment)
	}

	if len(summary.Trend) > 0 {
		b.WriteString("\n## Mood trend\n\n| Date | Mood |\n|---|---|\n")
		for _, p := range summary.Trend {
			fmt.Fprintf(&b, "| %s | %s %d |\n", p.Date.Format("Mon Jan 2"), strings.Repeat("#", p.Mood), p.Mood)
		}
	}

	if len(summary.TopKeywords) > 0 {
		b.WriteString("\n## Recurring themes\n\n")
		for _, kw := range summary.TopKeywords {
			fmt.Fprintf(&b, "- %s (%d)\n", kw.Keyword, kw.Count)
		}
	}

	b.WriteString("\n## Recommendations\n\n")
	for _, rec := range summary.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	return b.String()
}

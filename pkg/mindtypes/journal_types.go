// Package mindtypes defines journal types for MindfulU.
// This file contains journal entries and the analysis attached to them.
package mindtypes

import "time"

// Mood bounds accepted for a journal entry.
const (
	MinMood     = 1
	MaxMood     = 10
	DefaultMood = 7
)

// Analysis is the structured insight derived from a journal entry.
type Analysis struct {
	Sentiment       string   `json:"sentiment" yaml:"sentiment"`
	Keywords        []string `json:"keywords" yaml:"keywords"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
}

// Clone returns a deep copy of the analysis.
func (a Analysis) Clone() Analysis {
	return Analysis{
		Sentiment:       a.Sentiment,
		Keywords:        append([]string(nil), a.Keywords...),
		Recommendations: append([]string(nil), a.Recommendations...),
	}
}

// JournalEntry is a single journal entry with its mood score.
// Entries are immutable once analyzed.
type JournalEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Mood      int       `json:"mood" yaml:"mood"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Analysis  *Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e JournalEntry) Clone() JournalEntry {
	clone := e
	if e.Analysis != nil {
		a := e.Analysis.Clone()
		clone.Analysis = &a
	}
	return clone
}

// ValidMood reports whether mood lies within [MinMood, MaxMood].
func ValidMood(mood int) bool {
	return mood >= MinMood && mood <= MaxMood
}

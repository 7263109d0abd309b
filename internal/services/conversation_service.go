package services

import (
	"context"

	"mindfulu/internal/logger"
	"mindfulu/internal/rules"
)

// Canned companion replies.
const (
	ReplyStress     = "I understand you're feeling stressed. That's completely normal, especially as a student. Here are some techniques that might help: try deep breathing exercises (4-7-8 breathing), take short breaks every hour, or try a 5-minute mindfulness meditation. Would you like me to guide you through any of these?"
	ReplyExam       = "Exam stress is very common! Remember that you've prepared as best you can. Try these strategies: review your notes briefly instead of cramming, get a good night's sleep, eat a healthy breakfast, and arrive early to settle in. Remember, one exam doesn't define you. How has your preparation been going?"
	ReplyLoneliness = "Feeling lonely can be really difficult. You're not alone in feeling this way - many students experience loneliness. Consider reaching out to classmates, joining study groups or clubs, or connecting with campus resources. Sometimes even a small interaction can help. Is there a particular situation that's making you feel this way?"
	ReplySleep      = "Sleep is so important for mental health and academic performance. Try establishing a bedtime routine: limit screens an hour before bed, keep your room cool and dark, and try some light stretching or reading. Aim for 7-9 hours when possible. What's your current sleep schedule like?"
	ReplyDefault    = "Thank you for sharing that with me. It's important to acknowledge your feelings. Remember that it's okay to have difficult days - they're part of the human experience. What matters is that you're taking steps to care for your mental health. Is there anything specific you'd like to talk about or explore?"

	// Greeting is the companion's opening line for a new conversation.
	Greeting = "Hello! I'm your mental health companion. I'm here to listen and support you. How are you feeling today?"
)

// quickReplies are suggested prompts offered to the student.
var quickReplies = []string{
	"I'm feeling stressed",
	"Help with anxiety",
	"Study tips",
	"Feeling overwhelmed",
}

func replyTable() *rules.Table[string] {
	return rules.NewTable("conversation", ReplyDefault,
		rules.Rule[string]{Name: "stress", Triggers: []string{"stress", "anxious"}, Result: ReplyStress},
		rules.Rule[string]{Name: "exam", Triggers: []string{"exam", "test"}, Result: ReplyExam},
		rules.Rule[string]{Name: "loneliness", Triggers: []string{"lonely", "alone"}, Result: ReplyLoneliness},
		rules.Rule[string]{Name: "sleep", Triggers: []string{"sleep", "tired"}, Result: ReplySleep},
	)
}

// ConversationService produces the companion's scripted replies.
// It is a pure classifier over an ordered topic table.
type ConversationService struct {
	initialized bool
	table       *rules.Table[string]
	observer    RuleObserver
}

// NewConversationService creates a ConversationService with the built-in reply table.
func NewConversationService() *ConversationService {
	return &ConversationService{
		table: replyTable(),
	}
}

// Name returns the service name "conversation" for registration.
func (c *ConversationService) Name() string {
	return "conversation"
}

// Initialize marks the service ready.
func (c *ConversationService) Initialize() error {
	c.initialized = true
	logger.Debug("ConversationService initialized", "rules", len(c.table.Rules()))
	return nil
}

// SetObserver attaches an observer notified of every classification.
func (c *ConversationService) SetObserver(observer RuleObserver) {
	c.observer = observer
}

// Respond returns the reply of the first topic rule found in message,
// or the default empathetic reply.
func (c *ConversationService) Respond(_ context.Context, message string) (string, error) {
	match := c.table.Evaluate(message)

	logger.RuleMatched(c.table.Name(), match.Rule)
	if c.observer != nil {
		c.observer.ObserveRule(c.table.Name(), match.Rule)
	}

	return match.Result, nil
}

// Greeting returns the companion's opening line.
func (c *ConversationService) Greeting() string {
	return Greeting
}

// QuickReplies returns the suggested prompts.
func (c *ConversationService) QuickReplies() []string {
	return append([]string(nil), quickReplies...)
}

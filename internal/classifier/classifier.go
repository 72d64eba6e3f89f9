package classifier

import (
	"strings"

	"github.com/xaenox/cafe-bot/internal/models"
)

// Responder maps free-text input to a canned reply.
type Responder interface {
	Respond(input string) models.Response
}

// Predicate is a trigger condition over lowercased input.
type Predicate func(lower string) bool

// Rule pairs a trigger with the reply it produces.
type Rule struct {
	Name        string
	Trigger     Predicate
	Text        string
	Suggestions []string
}

// ContainsAny triggers when the input contains at least one keyword.
func ContainsAny(keywords ...string) Predicate {
	return func(lower string) bool {
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
}

// Always is the catch-all trigger.
func Always(string) bool { return true }

// Rule names, in priority order.
const (
	RuleRecommend = "recommend"
	RuleHours     = "hours"
	RuleMenu      = "menu"
	RuleOrder     = "order"
	RuleLocation  = "location"
	RuleLoyalty   = "loyalty"
	RuleFallback  = "fallback"
)

// DefaultRules is the café's rule table. Rules are evaluated top to bottom
// and the first match wins, so input mentioning both "menu" and "order"
// gets the menu reply. The last rule always matches.
var DefaultRules = []Rule{
	{
		Name:        RuleRecommend,
		Trigger:     ContainsAny("recommend", "suggest"),
		Text:        "Based on the current weather and time, I'd recommend our Signature Cold Brew with vanilla cold foam! It's 95% popular and perfect for the afternoon. Would you like to see more personalized recommendations?",
		Suggestions: []string{"Show more drinks", "Food pairings", "Daily specials"},
	},
	{
		Name:        RuleHours,
		Trigger:     ContainsAny("hours", "open"),
		Text:        "We're currently open! Today's hours are 7:00 AM - 8:00 PM. We have a light crowd right now - perfect time to visit! 🕐",
		Suggestions: []string{"Get directions", "Check tomorrow", "Make reservation"},
	},
	{
		Name:        RuleMenu,
		Trigger:     ContainsAny("menu", "food"),
		Text:        "Our menu features artisan coffee, fresh food, and delicious desserts! We have vegan, gluten-free, and organic options. What type of item interests you most?",
		Suggestions: []string{"Coffee drinks", "Food options", "Desserts", "Dietary filters"},
	},
	{
		Name:        RuleOrder,
		Trigger:     ContainsAny("order", "buy"),
		Text:        "I can help you start an order! You can either visit us in-store or use our WhatsApp ordering for pickup. What would you like to order?",
		Suggestions: []string{"Coffee drinks", "Food items", "WhatsApp order", "Visit store"},
	},
	{
		Name:        RuleLocation,
		Trigger:     ContainsAny("location", "address"),
		Text:        "We're located at 123 Artisan Street, Coffee District, CA 94102. Free parking available and we're pet-friendly! 📍",
		Suggestions: []string{"Get directions", "Check parking", "Store amenities"},
	},
	{
		Name:        RuleLoyalty,
		Trigger:     ContainsAny("loyalty", "points"),
		Text:        "Great question! Our loyalty program gives you points for every purchase. You can spin our daily wheel for prizes and unlock rewards like free coffee and meals! 🎁",
		Suggestions: []string{"Check my points", "Spin wheel", "View rewards"},
	},
	{
		Name:        RuleFallback,
		Trigger:     Always,
		Text:        "I'm here to help with menu recommendations, store hours, orders, and more! What would you like to know about Artisan Café?",
		Suggestions: []string{"Menu & drinks", "Store info", "Place order", "Loyalty rewards"},
	},
}

// Greeting opens every new conversation.
var Greeting = models.Response{
	Rule:        "greeting",
	Text:        "Hi! I'm your AI café assistant ☕ How can I help you today?",
	Suggestions: []string{"Recommend a drink", "Check hours", "Menu info", "Place order"},
}

// QuickActions are the canned prompts offered under the chat input.
var QuickActions = []string{
	"What's popular today?",
	"Are you open now?",
	"Where are you located?",
}

// KeywordResponder evaluates an ordered rule table.
type KeywordResponder struct {
	rules []Rule
}

// NewKeywordResponder returns a responder over rules. A nil or empty table
// uses DefaultRules. If the table has no catch-all at the end, the default
// fallback is appended so Respond stays total.
func NewKeywordResponder(rules []Rule) *KeywordResponder {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	table := make([]Rule, len(rules), len(rules)+1)
	copy(table, rules)
	if last := table[len(table)-1]; last.Name != RuleFallback {
		table = append(table, DefaultRules[len(DefaultRules)-1])
	}
	return &KeywordResponder{rules: table}
}

// Respond returns the reply of the first rule whose trigger matches input.
func (r *KeywordResponder) Respond(input string) models.Response {
	lower := strings.ToLower(input)
	for _, rule := range r.rules {
		if rule.Trigger(lower) {
			return reply(rule)
		}
	}
	return reply(r.rules[len(r.rules)-1])
}

// Match returns the name of the rule that handles input.
func (r *KeywordResponder) Match(input string) string {
	return r.Respond(input).Rule
}

// Rules returns the rule names in evaluation order.
func (r *KeywordResponder) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

func reply(rule Rule) models.Response {
	suggestions := make([]string, len(rule.Suggestions))
	copy(suggestions, rule.Suggestions)
	return models.Response{
		Rule:        rule.Name,
		Text:        rule.Text,
		Suggestions: suggestions,
	}
}

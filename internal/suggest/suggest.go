// Package suggest proposes follow-up questions for a municipal assistant
// reply, skipping topics the resident has already asked about.
package suggest

import (
	"slices"
	"strings"
)

// MaxSuggestions caps the number of questions returned by Suggest.
const MaxSuggestions = 3

// rule fires when match reports true for the lower-cased reply. Each
// question is offered unless its topic is already covered.
type rule struct {
	match     func(content string) bool
	questions []topicQuestion
}

type topicQuestion struct {
	topic    string
	question string
}

func anyOf(words ...string) func(string) bool {
	return func(c string) bool {
		for _, w := range words {
			if strings.Contains(c, w) {
				return true
			}
		}
		return false
	}
}

func allOf(words ...string) func(string) bool {
	return func(c string) bool {
		for _, w := range words {
			if !strings.Contains(c, w) {
				return false
			}
		}
		return true
	}
}

var rules = []rule{
	{
		match: anyOf("mayor", "urscheler"),
		questions: []topicQuestion{
			{"mayor responsibilities", "What are the mayor's responsibilities?"},
			{"contact mayor", "How can I contact the mayor?"},
		},
	},
	{
		match: allOf("historical", "architectural"),
		questions: []topicQuestion{
			{"harb members", "Who is on the Historical Architectural Review Board?"},
			{"harb purpose", "What does the Historical Architectural Review Board do?"},
			{"harb application", "How do I apply for HARB approval?"},
		},
	},
	{
		match: func(c string) bool { return strings.Contains(c, "water") && anyOf("bill", "pay")(c) },
		questions: []topicQuestion{
			{"water bill online", "How do I pay my water bill online?"},
			{"water bill due", "When are water bills due?"},
		},
	},
	{
		match: allOf("office", "hours"),
		questions: []topicQuestion{
			{"department contacts", "How do I contact specific departments?"},
			{"holiday hours", "What are the holiday office closures?"},
		},
	},
	{
		match: anyOf("trash", "recycling", "waste"),
		questions: []topicQuestion{
			{"recycling rules", "What items can be recycled?"},
			{"bulk pickup", "How do I schedule bulk item pickup?"},
		},
	},
	{
		match: anyOf("property", "tax"),
		questions: []topicQuestion{
			{"property tax due", "When are property taxes due?"},
			{"tax assessment", "How is my property assessed for taxes?"},
		},
	},
	{
		// The assistant could not answer; steer toward topics it knows.
		match: anyOf("do not contain", "doesn't contain", "no information", "wasn't able to find"),
		questions: []topicQuestion{
			{"who is the mayor", "Who is the mayor?"},
			{"office hours", "What are the office hours?"},
			{"water bill", "How do I pay my water bill?"},
		},
	},
}

// generalQuestions pad the result when fewer than two rules fired.
var generalQuestions = []string{
	"Who is the mayor?",
	"What are the office hours?",
	"How do I pay my water bill?",
	"When is trash collection?",
	"Where can I find information about permits?",
	"How do I report a concern to the borough?",
}

// Suggest returns up to MaxSuggestions follow-up questions for content.
// previous holds questions already asked; topics they cover are skipped.
func Suggest(content string, previous []string) []string {
	lower := strings.ToLower(content)
	covered := make([]string, 0, len(previous))
	for _, q := range previous {
		if q = strings.TrimSpace(q); q != "" {
			covered = append(covered, strings.ToLower(q))
		}
	}

	var out []string
	for _, r := range rules {
		if !r.match(lower) {
			continue
		}
		for _, tq := range r.questions {
			if !Covered(covered, tq.topic) {
				out = append(out, tq.question)
			}
		}
	}

	if len(out) < 2 {
		for _, q := range generalQuestions {
			if len(out) >= MaxSuggestions {
				break
			}
			if !Covered(covered, q) && !slices.Contains(out, q) {
				out = append(out, q)
			}
		}
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// Covered reports whether topic overlaps any lower-cased covered question,
// in either direction.
func Covered(covered []string, topic string) bool {
	t := strings.ToLower(topic)
	for _, c := range covered {
		if strings.Contains(c, t) || strings.Contains(t, c) {
			return true
		}
	}
	return false
}

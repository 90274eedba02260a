package suggest

import (
	"slices"
	"testing"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		previous []string
		want     []string
	}{
		{
			name:    "mayor reply",
			content: "The mayor of Phoenixville is Peter Urscheler.",
			want: []string{
				"What are the mayor's responsibilities?",
				"How can I contact the mayor?",
			},
		},
		{
			name:    "harb reply capped at three",
			content: "The Historical Architectural Review Board meets monthly.",
			want: []string{
				"Who is on the Historical Architectural Review Board?",
				"What does the Historical Architectural Review Board do?",
				"How do I apply for HARB approval?",
			},
		},
		{
			name:    "water and taxes capped at three",
			content: "You can pay your water bill and property tax at Borough Hall.",
			want: []string{
				"How do I pay my water bill online?",
				"When are water bills due?",
				"When are property taxes due?",
			},
		},
		{
			name:     "covered topic skipped then padded",
			content:  "Office hours are 8am to 4:30pm.",
			previous: []string{"What are the holiday hours?"},
			want: []string{
				"How do I contact specific departments?",
				"Who is the mayor?",
				"What are the office hours?",
			},
		},
		{
			name:    "no information found",
			content: "I'm sorry, the documents do not contain that.",
			want: []string{
				"Who is the mayor?",
				"What are the office hours?",
				"How do I pay my water bill?",
			},
		},
		{
			name:     "general padding skips asked questions",
			content:  "Hello!",
			previous: []string{"Who is the mayor?", "What are the office hours?"},
			want: []string{
				"How do I pay my water bill?",
				"When is trash collection?",
				"Where can I find information about permits?",
			},
		},
		{
			name:     "blank previous ignored",
			content:  "Recycling is collected weekly.",
			previous: []string{"", "  "},
			want: []string{
				"What items can be recycled?",
				"How do I schedule bulk item pickup?",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.content, tt.previous)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Suggest() = %q\nwant %q", got, tt.want)
			}
			if len(got) > MaxSuggestions {
				t.Errorf("len = %d exceeds max", len(got))
			}
		})
	}
}

func TestCovered(t *testing.T) {
	covered := []string{"how can i contact the mayor?"}
	if !Covered(covered, "contact the mayor") {
		t.Error("substring of previous question should be covered")
	}
	if !Covered([]string{"mayor"}, "Who is the mayor?") {
		t.Error("previous question inside topic should be covered")
	}
	if Covered(covered, "bulk pickup") {
		t.Error("unrelated topic should not be covered")
	}
}

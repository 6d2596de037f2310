package services

import (
	"testing"
)

func TestResolveFeedbackAction(t *testing.T) {
	cases := []struct {
		name   string
		exists bool
		text   string
		want   feedbackAction
	}{
		{"no row, no text", false, "", feedbackNone},
		{"no row, text", false, "Needs work", feedbackInsert},
		{"row, text", true, "Needs work", feedbackUpdate},
		{"row, empty text", true, "", feedbackDelete},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveFeedbackAction(tc.exists, tc.text)
			if got != tc.want {
				t.Errorf("resolveFeedbackAction(%v, %q) = %v, want %v", tc.exists, tc.text, got, tc.want)
			}
		})
	}
}

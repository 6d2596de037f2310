package services

import (
	"testing"
	"time"

	"github.com/coursedeck/coursedeck/model"
)

func TestClassifyAssignment(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := model.Assignment{DueDate: now.Add(48 * time.Hour)}
	past := model.Assignment{DueDate: now.Add(-48 * time.Hour)}
	sub := &model.Submission{ID: "s1"}

	cases := []struct {
		name       string
		assignment model.Assignment
		submission *model.Submission
		want       AssignmentState
	}{
		{"no submission, future deadline", future, nil, AssignmentDue},
		{"no submission, past deadline", past, nil, AssignmentPast},
		{"submitted before deadline", future, sub, AssignmentPast},
		{"submitted after deadline", past, sub, AssignmentPast},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyAssignment(tc.assignment, tc.submission, now)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGroupSubmissionsEmptyBuckets(t *testing.T) {
	assignments := []model.Assignment{
		{ID: "a1"},
		{ID: "a2"},
	}
	submissions := []model.Submission{
		{ID: "s1", AssignmentID: "a1"},
		{ID: "s2", AssignmentID: "a1"},
	}

	got := groupSubmissions(assignments, submissions)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}

	if len(got[0].Submissions) != 2 {
		t.Errorf("a1: got %d submissions, want 2", len(got[0].Submissions))
	}

	// An assignment nobody answered must carry an empty slice, not nil,
	// so it serializes as [] instead of null.
	if got[1].Submissions == nil {
		t.Error("a2: submissions slice is nil")
	}
	if len(got[1].Submissions) != 0 {
		t.Errorf("a2: got %d submissions, want 0", len(got[1].Submissions))
	}
}

func TestGroupSubmissionsPreservesOrder(t *testing.T) {
	assignments := []model.Assignment{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	got := groupSubmissions(assignments, nil)

	for i, a := range assignments {
		if got[i].Assignment.ID != a.ID {
			t.Errorf("index %d: got %q, want %q", i, got[i].Assignment.ID, a.ID)
		}
	}
}

func TestBuildGradingTable(t *testing.T) {
	students := []model.Student{
		{ID: "st1", Username: "m.okafor"},
		{ID: "st2", Username: "l.petrov"},
	}
	fb := &model.Feedback{ID: "f1", Description: "Good work"}
	submissions := []model.Submission{
		{ID: "s1", StudentID: "st1", Status: model.SubmissionStatusPassed, Feedback: fb},
	}

	rows := buildGradingTable(students, submissions)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if rows[0].Submission == nil {
		t.Fatal("st1: expected a submission")
	}
	if rows[0].Submission.Status != model.SubmissionStatusPassed {
		t.Errorf("st1: got status %q, want passed", rows[0].Submission.Status)
	}
	if rows[0].Feedback == nil || rows[0].Feedback.Description != "Good work" {
		t.Error("st1: feedback not carried through")
	}

	// Enrolled students without a submission still get a row.
	if rows[1].Submission != nil {
		t.Error("st2: expected no submission")
	}
	if rows[1].Feedback != nil {
		t.Error("st2: expected no feedback")
	}
}

package services

import (
	"testing"

	"github.com/coursedeck/coursedeck/model"
)

func TestGroupRoster(t *testing.T) {
	professor := model.Professor{ID: "p1", Username: "prof.rivera"}
	memberships := []model.CourseProfessor{
		{ProfessorID: "p1", CourseID: "c1", Course: model.Course{ID: "c1", Name: "Databases"}},
		{ProfessorID: "p1", CourseID: "c2", Course: model.Course{ID: "c2", Name: "Networks"}},
	}
	enrollments := []model.CourseStudent{
		{StudentID: "st1", CourseID: "c1", Student: model.Student{ID: "st1"}},
		{StudentID: "st2", CourseID: "c1", Student: model.Student{ID: "st2"}},
	}

	rosters := groupRoster(professor, memberships, enrollments)
	if len(rosters) != 2 {
		t.Fatalf("got %d rosters, want 2", len(rosters))
	}

	if rosters[0].Course.Name != "Databases" {
		t.Errorf("got course %q, want Databases", rosters[0].Course.Name)
	}
	if len(rosters[0].Students) != 2 {
		t.Errorf("Databases: got %d students, want 2", len(rosters[0].Students))
	}
	if rosters[0].Professor.ID != "p1" {
		t.Errorf("got professor %q, want p1", rosters[0].Professor.ID)
	}

	// A course with no enrolled students gets an empty slice, not nil.
	if rosters[1].Students == nil {
		t.Error("Networks: students slice is nil")
	}
	if len(rosters[1].Students) != 0 {
		t.Errorf("Networks: got %d students, want 0", len(rosters[1].Students))
	}
}

func TestGroupRosterNoCourses(t *testing.T) {
	professor := model.Professor{ID: "p1"}
	rosters := groupRoster(professor, nil, nil)
	if len(rosters) != 0 {
		t.Fatalf("got %d rosters, want 0", len(rosters))
	}
}

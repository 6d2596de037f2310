package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursedeck/coursedeck/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// CourseService handles course queries and the course upsert mutation
type CourseService struct {
	db *gorm.DB
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// CourseRoster aggregates one course with its owning professor and the
// full enrolled student list.
type CourseRoster struct {
	Course    model.Course    `json:"course"`
	Professor model.Professor `json:"professor"`
	Students  []model.Student `json:"students"`
}

// UpsertCourseInput is the course create/update request. A nil ID means
// create. Professor and student lists fully replace existing membership.
type UpsertCourseInput struct {
	ID           *string  `json:"id" validate:"omitempty,uuid"`
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	ProfessorIDs []string `json:"professor_ids" validate:"required,min=1,dive,uuid"`
	StudentIDs   []string `json:"student_ids" validate:"dive,uuid"`
}

// RosterByProfessor returns every course the professor teaches, each with
// its enrolled students. Courses with no students carry an empty slice.
func (s *CourseService) RosterByProfessor(ctx context.Context, professorID string) ([]CourseRoster, error) {
	var professor model.Professor
	if err := s.db.WithContext(ctx).First(&professor, "id = ?", professorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("professor not found")
		}
		return nil, fmt.Errorf("failed to fetch professor: %w", err)
	}

	var memberships []model.CourseProfessor
	if err := s.db.WithContext(ctx).
		Preload("Course").
		Where("professor_id = ?", professorID).
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}

	courseIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		courseIDs = append(courseIDs, m.CourseID)
	}

	var enrollments []model.CourseStudent
	if len(courseIDs) > 0 {
		if err := s.db.WithContext(ctx).
			Preload("Student").
			Where("course_id IN ?", courseIDs).
			Find(&enrollments).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
		}
	}

	return groupRoster(professor, memberships, enrollments), nil
}

// groupRoster folds membership and enrollment rows into per-course
// aggregates, preserving the membership row order.
func groupRoster(professor model.Professor, memberships []model.CourseProfessor, enrollments []model.CourseStudent) []CourseRoster {
	studentsByCourse := make(map[string][]model.Student)
	for _, e := range enrollments {
		studentsByCourse[e.CourseID] = append(studentsByCourse[e.CourseID], e.Student)
	}

	rosters := make([]CourseRoster, 0, len(memberships))
	for _, m := range memberships {
		students := studentsByCourse[m.CourseID]
		if students == nil {
			students = []model.Student{}
		}
		rosters = append(rosters, CourseRoster{
			Course:    m.Course,
			Professor: professor,
			Students:  students,
		})
	}
	return rosters
}

// CoursesByStudent returns the courses a student is enrolled in.
func (s *CourseService) CoursesByStudent(ctx context.Context, studentID string) ([]model.Course, error) {
	var enrollments []model.CourseStudent
	if err := s.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}

	courses := make([]model.Course, 0, len(enrollments))
	for _, e := range enrollments {
		courses = append(courses, e.Course)
	}
	return courses, nil
}

// GetCourse fetches a single course by ID.
func (s *CourseService) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	return &course, nil
}

// UpsertCourse creates or updates a course together with its professor and
// student membership. Membership is replaced wholesale: existing mapping
// rows are deleted and the submitted lists reinserted. The whole mutation
// runs in one transaction so a failed reinsert cannot strand a course
// without members.
func (s *CourseService) UpsertCourse(ctx context.Context, input UpsertCourseInput) (*model.Course, error) {
	var course model.Course

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.ID != nil {
			if err := tx.First(&course, "id = ?", *input.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCourseNotFound
				}
				return fmt.Errorf("failed to fetch course: %w", err)
			}
			course.Name = input.Name
			if err := tx.Save(&course).Error; err != nil {
				return fmt.Errorf("failed to update course: %w", err)
			}
		} else {
			course = model.Course{
				ID:   uuid.New().String(),
				Name: input.Name,
			}
			if err := tx.Create(&course).Error; err != nil {
				return fmt.Errorf("failed to create course: %w", err)
			}
		}

		if err := tx.Where("course_id = ?", course.ID).Delete(&model.CourseProfessor{}).Error; err != nil {
			return fmt.Errorf("failed to clear professor mappings: %w", err)
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.CourseStudent{}).Error; err != nil {
			return fmt.Errorf("failed to clear student mappings: %w", err)
		}

		if len(input.ProfessorIDs) > 0 {
			mappings := make([]model.CourseProfessor, 0, len(input.ProfessorIDs))
			for _, id := range input.ProfessorIDs {
				mappings = append(mappings, model.CourseProfessor{ProfessorID: id, CourseID: course.ID})
			}
			if err := tx.Create(&mappings).Error; err != nil {
				return fmt.Errorf("failed to insert professor mappings: %w", err)
			}
		}

		if len(input.StudentIDs) > 0 {
			mappings := make([]model.CourseStudent, 0, len(input.StudentIDs))
			for _, id := range input.StudentIDs {
				mappings = append(mappings, model.CourseStudent{StudentID: id, CourseID: course.ID})
			}
			if err := tx.Create(&mappings).Error; err != nil {
				return fmt.Errorf("failed to insert student mappings: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

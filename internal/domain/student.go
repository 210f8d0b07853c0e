package domain

import "time"

type Student struct {
	ID        string
	FirstName string
	LastName  string
	Email     string

	DegreeType          string
	DegreeDurationYears int

	// Courses is the explicit enrollment list. Dual-degree students carry
	// more than one entry; at most one entry is marked primary and the
	// first entry is treated as primary when none is.
	Courses []CourseEnrollment

	// Legacy single-course fields, consulted only when Courses is empty.
	LegacyCourse       string
	LegacyAcademicYear string

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

type CourseEnrollment struct {
	CourseName string `json:"course_name"`
	StartYear  int    `json:"start_year"`
	EndYear    int    `json:"end_year"`
	Primary    bool   `json:"primary"`
}

// EffectiveCourses returns the enrollment list the engines work against:
// the explicit list when present, otherwise a single enrollment derived
// from the legacy course/academic-year pair. A malformed legacy year
// yields an empty list.
func (s Student) EffectiveCourses() []CourseEnrollment {
	if len(s.Courses) > 0 {
		return s.Courses
	}
	if s.LegacyCourse == "" || s.LegacyAcademicYear == "" {
		return nil
	}
	start, end, err := ParseAcademicYear(s.LegacyAcademicYear)
	if err != nil {
		return nil
	}
	return []CourseEnrollment{{
		CourseName: s.LegacyCourse,
		StartYear:  start,
		EndYear:    end,
		Primary:    true,
	}}
}

// PrimaryCourse returns the enrollment marked primary, falling back to the
// first effective enrollment. ok is false for students with no courses.
func (s Student) PrimaryCourse() (CourseEnrollment, bool) {
	courses := s.EffectiveCourses()
	if len(courses) == 0 {
		return CourseEnrollment{}, false
	}
	for _, c := range courses {
		if c.Primary {
			return c, true
		}
	}
	return courses[0], true
}

// Package models defines the entities of the school administration domain:
// teachers, courses, scheduled editions, participants, and the two
// composite-key associations between them (qualifications and enrollments).
package models

import "time"

// Teacher kinds. A teacher is either on staff or an external consultant.
const (
	KindInternal   = "internal"
	KindConsultant = "consultant"
)

// TeacherKinds lists the accepted values for Teacher.Kind.
var TeacherKinds = []string{KindInternal, KindConsultant}

// Teacher is identified by fiscal code.
type Teacher struct {
	CF        string `db:"cf"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	BirthCity string `db:"birth_city"`
	Kind      string `db:"kind"`
}

// FullName returns "First Last", tolerating an empty first name.
func (t Teacher) FullName() string {
	if t.FirstName == "" {
		return t.LastName
	}
	return t.FirstName + " " + t.LastName
}

// TeacherRow is a teacher list row with dependency counts.
type TeacherRow struct {
	Teacher
	NumQualifications int `db:"num_qualifications"`
	NumEditions       int `db:"num_editions"`
}

type Course struct {
	Code  string `db:"code"`
	Title string `db:"title"`
}

// Edition is one scheduled run of a course. The responsible teacher is
// optional: nil means no one is assigned yet.
type Edition struct {
	Code       string  `db:"code"`
	CourseCode string  `db:"course_code"`
	TeacherCF  *string `db:"teacher_cf"`
}

// EditionRow is an edition list row joined with course and teacher names.
type EditionRow struct {
	Edition
	CourseTitle string  `db:"course_title"`
	TeacherName *string `db:"teacher_name"`
}

type Participant struct {
	CF        string `db:"cf"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// FullName returns "First Last", tolerating an empty first name.
func (p Participant) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// Qualification states that a teacher may teach a course.
// Composite key: (teacher_cf, course_code).
type Qualification struct {
	TeacherCF  string `db:"teacher_cf"`
	CourseCode string `db:"course_code"`
}

// QualificationRow is a qualification joined with human-readable names.
type QualificationRow struct {
	Qualification
	TeacherName string `db:"teacher_name"`
	CourseTitle string `db:"course_title"`
}

// QualificationStats are the aggregate counts shown next to the list.
type QualificationStats struct {
	Total    int `db:"total"`
	Teachers int `db:"teachers"`
	Courses  int `db:"courses"`
}

// Enrollment links a participant to an edition. Grade is optional:
// nil means the participant has not been graded yet, which is distinct
// from a grade of zero. Valid grades are in [0, 30].
type Enrollment struct {
	ParticipantCF string `db:"participant_cf"`
	EditionCode   string `db:"edition_code"`
	Grade         *int   `db:"grade"`
}

// GradeBounds for enrollment grades (closed interval).
const (
	GradeMin = 0
	GradeMax = 30
)

// EnrollmentRow is an enrollment joined with names and course info.
type EnrollmentRow struct {
	Enrollment
	ParticipantName string  `db:"participant_name"`
	CourseCode      string  `db:"course_code"`
	CourseTitle     string  `db:"course_title"`
	TeacherName     *string `db:"teacher_name"`
}

// EnrollmentStats are the aggregate counts shown next to the list.
// AvgGrade is nil when no enrollment has a grade yet.
type EnrollmentStats struct {
	Total        int      `db:"total"`
	Participants int      `db:"participants"`
	Editions     int      `db:"editions"`
	Graded       int      `db:"graded"`
	AvgGrade     *float64 `db:"avg_grade"`
}

// TeacherDependencies counts the rows that hang off a teacher. They are
// shown on the delete-confirmation page and resolved by the cascade.
type TeacherDependencies struct {
	Phones         int `db:"phones"`
	Qualifications int `db:"qualifications"`
	Editions       int `db:"editions"`
}

// AuditEntry records one successful mutation.
type AuditEntry struct {
	ID        string    `db:"id"`
	At        time.Time `db:"at"`
	IP        string    `db:"ip"`
	Action    string    `db:"action"`
	Entity    string    `db:"entity"`
	EntityKey string    `db:"entity_key"`
	Detail    string    `db:"detail"`
}

// Dashboard is the landing-page summary.
type Dashboard struct {
	Teachers     int
	Courses      int
	Editions     int
	Participants int

	LatestTeachers []Teacher
	PopularCourses []CourseEditions
}

// CourseEditions pairs a course title with how many editions it has.
type CourseEditions struct {
	Title       string `db:"title"`
	NumEditions int    `db:"num_editions"`
}

// SearchResults holds the per-table hits of the fan-out keyword search.
type SearchResults struct {
	Teachers     []Teacher
	Courses      []Course
	Editions     []EditionRow
	Participants []Participant
}

// Total is the number of hits across all tables.
func (r SearchResults) Total() int {
	return len(r.Teachers) + len(r.Courses) + len(r.Editions) + len(r.Participants)
}

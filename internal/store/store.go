// Package store defines persistent storage for the school administration
// domain. The Store interface is implemented once on top of sqlx (BaseStore)
// and instantiated by the postgres and sqlite subpackages; SQLite is what the
// test suite runs against.
package store

import (
	"context"
	"errors"

	"github.com/lbianche/schooladmin/internal/models"
)

// ErrNotFound is returned when an operation requires a row that does not
// exist, e.g. deleting a teacher whose fiscal code is unknown.
var ErrNotFound = errors.New("not found")

// EnrollmentFilter optionally scopes an enrollment listing to one
// participant, one edition, or both. Empty fields mean "no filter".
type EnrollmentFilter struct {
	ParticipantCF string
	EditionCode   string
}

type Store interface {
	Close() error
	ApplyMigrations(dir string) error

	// Teachers
	ListTeachers(ctx context.Context) ([]models.TeacherRow, error)
	GetTeacher(ctx context.Context, cf string) (*models.Teacher, error)
	// CreateTeacher inserts the teacher and, when phone is non-empty, a first
	// phone number in the same transaction. Returns false when a teacher with
	// the same fiscal code already exists.
	CreateTeacher(ctx context.Context, t models.Teacher, phone string) (bool, error)
	UpdateTeacher(ctx context.Context, t models.Teacher) error
	TeacherDependencies(ctx context.Context, cf string) (*models.TeacherDependencies, error)
	// DeleteTeacherCascade removes the teacher inside one transaction:
	// phone numbers and qualifications are deleted, editions referencing the
	// teacher are detached (teacher_cf set to NULL), then the teacher row is
	// deleted. Returns the resolved counts, or ErrNotFound (with a full
	// rollback) when no teacher row was deleted.
	DeleteTeacherCascade(ctx context.Context, cf string) (*models.TeacherDependencies, error)
	ListPhones(ctx context.Context, cf string) ([]string, error)
	AddPhone(ctx context.Context, cf, number string) (bool, error)
	DeletePhone(ctx context.Context, cf, number string) (bool, error)

	// Courses
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, code string) (*models.Course, error)
	CreateCourse(ctx context.Context, c models.Course) (bool, error)
	// CourseDependencies returns (editions, qualifications) referencing the course.
	CourseDependencies(ctx context.Context, code string) (int, int, error)
	DeleteCourse(ctx context.Context, code string) (bool, error)

	// Editions
	ListEditions(ctx context.Context) ([]models.EditionRow, error)
	GetEdition(ctx context.Context, code string) (*models.EditionRow, error)
	CreateEdition(ctx context.Context, e models.Edition) (bool, error)
	EditionEnrollments(ctx context.Context, code string) (int, error)
	DeleteEdition(ctx context.Context, code string) (bool, error)

	// Participants
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	GetParticipant(ctx context.Context, cf string) (*models.Participant, error)
	CreateParticipant(ctx context.Context, p models.Participant) (bool, error)
	ParticipantEnrollments(ctx context.Context, cf string) (int, error)
	DeleteParticipant(ctx context.Context, cf string) (bool, error)

	// Qualifications (teacher <-> course)
	// teacherCF scopes the listing when non-empty.
	ListQualifications(ctx context.Context, teacherCF string) ([]models.QualificationRow, error)
	// CreateQualification returns false when the (teacher, course) pair
	// already exists. The uniqueness check is the composite primary key
	// itself, so concurrent creates cannot race.
	CreateQualification(ctx context.Context, q models.Qualification) (bool, error)
	DeleteQualification(ctx context.Context, q models.Qualification) (bool, error)
	QualificationStats(ctx context.Context) (*models.QualificationStats, error)

	// Enrollments (participant <-> edition, optional grade)
	ListEnrollments(ctx context.Context, f EnrollmentFilter) ([]models.EnrollmentRow, error)
	CreateEnrollment(ctx context.Context, e models.Enrollment) (bool, error)
	// UpdateEnrollmentGrade sets (or clears, when e.Grade is nil) the grade
	// and reports how many rows were affected. Zero is not an error.
	UpdateEnrollmentGrade(ctx context.Context, e models.Enrollment) (int64, error)
	DeleteEnrollment(ctx context.Context, participantCF, editionCode string) (bool, error)
	EnrollmentStats(ctx context.Context) (*models.EnrollmentStats, error)

	// Search runs independent LIKE queries over teachers, courses, editions
	// and participants, capped at limit rows per table.
	Search(ctx context.Context, term string, limit int) (*models.SearchResults, error)

	GetDashboard(ctx context.Context) (*models.Dashboard, error)

	RecordAudit(ctx context.Context, e models.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Package school holds the business operations of the administration app.
// The Service wraps the store with the rules the pages rely on: duplicate
// detection surfaced as a non-fatal outcome, dependency-checked deletion,
// the teacher cascade, and best-effort audit recording of every mutation.
package school

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lbianche/schooladmin/internal/config"
	"github.com/lbianche/schooladmin/internal/logging"
	"github.com/lbianche/schooladmin/internal/metrics"
	"github.com/lbianche/schooladmin/internal/models"
	"github.com/lbianche/schooladmin/internal/store"
)

// SearchLimit caps how many rows each table contributes to a search.
const SearchLimit = 20

// AuditLimit caps the audit page listing.
const AuditLimit = 100

type Service struct {
	store store.Store
	cfg   *config.Config
}

func NewService(st store.Store, cfg *config.Config) *Service {
	return &Service{store: st, cfg: cfg}
}

// Store exposes read access for the page handlers.
func (s *Service) Store() store.Store { return s.store }

// Debug reports whether raw error detail may be shown to the browser.
func (s *Service) Debug() bool { return s.cfg.App.Debug }

// AppName is the title shown in the page chrome.
func (s *Service) AppName() string { return s.cfg.App.Name }

// UserErrorMessage converts an internal error into what the page may show.
// In debug mode the raw detail is surfaced; in production the caller is
// expected to log the detail and the user sees a generic message.
func (s *Service) UserErrorMessage(err error) string {
	if s.cfg.App.Debug {
		return err.Error()
	}
	return "A database error occurred. Please try again or contact the administrator."
}

// audit records a successful mutation. Best-effort: a failure is logged and
// never propagated, an audit problem must not undo a committed change.
func (s *Service) audit(ctx context.Context, ip, action, entity, key, detail string) {
	entry := models.AuditEntry{
		ID:        uuid.NewString(),
		At:        time.Now().UTC(),
		IP:        ip,
		Action:    action,
		Entity:    entity,
		EntityKey: key,
		Detail:    detail,
	}
	if err := s.store.RecordAudit(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("audit entry dropped",
			"action", action, "entity", entity, "key", key, "error", err)
	}
}

func outcome(created bool) string {
	if created {
		return "ok"
	}
	return "exists"
}

// AddTeacher registers a teacher with an optional first phone number.
// Returns false when the fiscal code is already registered.
func (s *Service) AddTeacher(ctx context.Context, ip string, t models.Teacher, phone string) (bool, error) {
	created, err := s.store.CreateTeacher(ctx, t, phone)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("teacher", "add", "error").Inc()
		return false, err
	}
	metrics.MutationsTotal.WithLabelValues("teacher", "add", outcome(created)).Inc()
	if created {
		s.audit(ctx, ip, "add", "teacher", t.CF, t.FullName())
	}
	return created, nil
}

func (s *Service) UpdateTeacher(ctx context.Context, ip string, t models.Teacher) error {
	if err := s.store.UpdateTeacher(ctx, t); err != nil {
		metrics.MutationsTotal.WithLabelValues("teacher", "update", "error").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("teacher", "update", "ok").Inc()
	s.audit(ctx, ip, "update", "teacher", t.CF, t.FullName())
	return nil
}

// RemoveTeacher runs the cascade: phones and qualifications deleted,
// editions detached, teacher removed, all in one transaction.
func (s *Service) RemoveTeacher(ctx context.Context, ip, cf string) (*models.TeacherDependencies, error) {
	deps, err := s.store.DeleteTeacherCascade(ctx, cf)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("teacher", "delete", "error").Inc()
		return nil, err
	}
	metrics.MutationsTotal.WithLabelValues("teacher", "delete", "ok").Inc()
	s.audit(ctx, ip, "delete", "teacher", cf, fmt.Sprintf(
		"cascade: %d phones, %d qualifications, %d editions detached",
		deps.Phones, deps.Qualifications, deps.Editions))
	return deps, nil
}

func (s *Service) AddPhone(ctx context.Context, ip, cf, number string) (bool, error) {
	created, err := s.store.AddPhone(ctx, cf, number)
	if err != nil {
		return false, err
	}
	if created {
		s.audit(ctx, ip, "add", "phone", cf, number)
	}
	return created, nil
}

func (s *Service) RemovePhone(ctx context.Context, ip, cf, number string) (bool, error) {
	deleted, err := s.store.DeletePhone(ctx, cf, number)
	if err != nil {
		return false, err
	}
	if deleted {
		s.audit(ctx, ip, "delete", "phone", cf, number)
	}
	return deleted, nil
}

// DependencyError reports a delete refused because dependent rows exist.
type DependencyError struct {
	Entity string
	Counts map[string]int
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s still has dependent rows: %v", e.Entity, e.Counts)
}

func (s *Service) AddCourse(ctx context.Context, ip string, c models.Course) (bool, error) {
	created, err := s.store.CreateCourse(ctx, c)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("course", "add", "error").Inc()
		return false, err
	}
	metrics.MutationsTotal.WithLabelValues("course", "add", outcome(created)).Inc()
	if created {
		s.audit(ctx, ip, "add", "course", c.Code, c.Title)
	}
	return created, nil
}

// RemoveCourse refuses while editions or qualifications reference the course.
func (s *Service) RemoveCourse(ctx context.Context, ip, code string) error {
	editions, qualifications, err := s.store.CourseDependencies(ctx, code)
	if err != nil {
		return err
	}
	if editions > 0 || qualifications > 0 {
		return &DependencyError{Entity: "course", Counts: map[string]int{
			"editions":       editions,
			"qualifications": qualifications,
		}}
	}
	deleted, err := s.store.DeleteCourse(ctx, code)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("course", "delete", "error").Inc()
		return err
	}
	if !deleted {
		return store.ErrNotFound
	}
	metrics.MutationsTotal.WithLabelValues("course", "delete", "ok").Inc()
	s.audit(ctx, ip, "delete", "course", code, "")
	return nil
}

func (s *Service) AddEdition(ctx context.Context, ip string, e models.Edition) (bool, error) {
	created, err := s.store.CreateEdition(ctx, e)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("edition", "add", "error").Inc()
		return false, err
	}
	metrics.MutationsTotal.WithLabelValues("edition", "add", outcome(created)).Inc()
	if created {
		s.audit(ctx, ip, "add", "edition", e.Code, e.CourseCode)
	}
	return created, nil
}

// RemoveEdition refuses while participants are enrolled.
func (s *Service) RemoveEdition(ctx context.Context, ip, code string) error {
	enrolled, err := s.store.EditionEnrollments(ctx, code)
	if err != nil {
		return err
	}
	if enrolled > 0 {
		return &DependencyError{Entity: "edition", Counts: map[string]int{"enrollments": enrolled}}
	}
	deleted, err := s.store.DeleteEdition(ctx, code)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("edition", "delete", "error").Inc()
		return err
	}
	if !deleted {
		return store.ErrNotFound
	}
	metrics.MutationsTotal.WithLabelValues("edition", "delete", "ok").Inc()
	s.audit(ctx, ip, "delete", "edition", code, "")
	return nil
}

func (s *Service) AddParticipant(ctx context.Context, ip string, p models.Participant) (bool, error) {
	created, err := s.store.CreateParticipant(ctx, p)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("participant", "add", "error").Inc()
		return false, err
	}
	metrics.MutationsTotal.WithLabelValues("participant", "add", outcome(created)).Inc()
	if created {
		s.audit(ctx, ip, "add", "participant", p.CF, p.FullName())
	}
	return created, nil
}

// RemoveParticipant refuses while enrollments exist.
func (s *Service) RemoveParticipant(ctx context.Context, ip, cf string) error {
	enrolled, err := s.store.ParticipantEnrollments(ctx, cf)
	if err != nil {
		return err
	}
	if enrolled > 0 {
		return &DependencyError{Entity: "participant", Counts: map[string]int{"enrollments": enrolled}}
	}
	deleted, err := s.store.DeleteParticipant(ctx, cf)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("participant", "delete", "error").Inc()
		return err
	}
	if !deleted {
		return store.ErrNotFound
	}
	metrics.MutationsTotal.WithLabelValues("participant", "delete", "ok").Inc()
	s.audit(ctx, ip, "delete", "participant", cf, "")
	return nil
}

// Qualify grants a teacher a course. Returns false when the pair already
// exists; the page turns that into a warning, not an error.
func (s *Service) Qualify(ctx context.Context, ip string, q models.Qualification) (bool, error) {
	created, err := s.store.CreateQualification(ctx, q)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("qualification", "add", "error").Inc()
		return false, err
	}
	metrics.MutationsTotal.WithLabelValues("qualification", "add", outcome(created)).Inc()
	if created {
		s.audit(ctx, ip, "add", "qualification", q.TeacherCF+"/"+q.CourseCode, "")
	}
	return created, nil
}

func (s *Service) Disqualify(ctx context.Context, ip string, q models.Qualification) (bool, error) {
	deleted, err := s.store.DeleteQualification(ctx, q)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("qualification", "delete", "error").Inc()
		return false, err
	}
	if deleted {
		metrics.MutationsTotal.WithLabelValues("qualification", "delete", "ok").Inc()
		s.audit(ctx, ip, "delete", "qualification", q.TeacherCF+"/"+q.CourseCode, "")
	}
	return deleted, nil
}

// Enroll signs a participant up for an edition, optionally with a grade.
// Returns false when the pair already exists.
func (s *Service) Enroll(ctx context.Context, ip string, e models.Enrollment) (bool, error) {
	created, err := s.store.CreateEnrollment(ctx, e)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("enrollment", "add", "error").Inc()
		return false, err
	}
	metrics.MutationsTotal.WithLabelValues("enrollment", "add", outcome(created)).Inc()
	if created {
		detail := "ungraded"
		if e.Grade != nil {
			detail = "grade " + strconv.Itoa(*e.Grade)
			metrics.GradeHistogram.WithLabelValues(e.EditionCode).Observe(float64(*e.Grade))
		}
		s.audit(ctx, ip, "add", "enrollment", e.ParticipantCF+"/"+e.EditionCode, detail)
	}
	return created, nil
}

// SetGrade sets or clears the grade for an enrollment. Updating a pair that
// does not exist is a silent no-op, matching the page contract: the list the
// user is redirected to simply shows no such row.
func (s *Service) SetGrade(ctx context.Context, ip string, e models.Enrollment) error {
	affected, err := s.store.UpdateEnrollmentGrade(ctx, e)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("enrollment", "update", "error").Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues("enrollment", "update", "ok").Inc()
	if affected > 0 {
		detail := "grade cleared"
		if e.Grade != nil {
			detail = "grade " + strconv.Itoa(*e.Grade)
			metrics.GradeHistogram.WithLabelValues(e.EditionCode).Observe(float64(*e.Grade))
		}
		s.audit(ctx, ip, "update", "enrollment", e.ParticipantCF+"/"+e.EditionCode, detail)
	}
	return nil
}

func (s *Service) Unenroll(ctx context.Context, ip, participantCF, editionCode string) (bool, error) {
	deleted, err := s.store.DeleteEnrollment(ctx, participantCF, editionCode)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("enrollment", "delete", "error").Inc()
		return false, err
	}
	if deleted {
		metrics.MutationsTotal.WithLabelValues("enrollment", "delete", "ok").Inc()
		s.audit(ctx, ip, "delete", "enrollment", participantCF+"/"+editionCode, "")
	}
	return deleted, nil
}

package school

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbianche/schooladmin/internal/config"
	"github.com/lbianche/schooladmin/internal/models"
	"github.com/lbianche/schooladmin/internal/store"
	"github.com/lbianche/schooladmin/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.ApplyMigrations("../../migrations"))

	cfg := &config.Config{}
	cfg.App.Name = "Test school"
	return NewService(st, cfg)
}

func intPtr(n int) *int { return &n }

func auditActions(t *testing.T, s *Service) []string {
	t.Helper()
	entries, err := s.Store().ListAudit(context.Background(), AuditLimit)
	require.NoError(t, err)
	actions := make([]string, len(entries))
	for i, e := range entries {
		actions[i] = e.Action + " " + e.Entity
	}
	return actions
}

func TestAddTeacherDuplicateOutcome(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	teacher := models.Teacher{
		CF:        "RSSMRA80A01F205X",
		FirstName: "Anna",
		LastName:  "Rossi",
		BirthCity: "Milano",
		Kind:      models.KindInternal,
	}

	created, err := s.AddTeacher(ctx, "10.0.0.1", teacher, "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.AddTeacher(ctx, "10.0.0.1", teacher, "")
	require.NoError(t, err)
	assert.False(t, created)

	// only the successful create is audited
	assert.Equal(t, []string{"add teacher"}, auditActions(t, s))
}

func TestRemoveTeacherCascade(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ip := "10.0.0.1"

	_, err := s.AddTeacher(ctx, ip, models.Teacher{
		CF: "RSSMRA80A01F205X", LastName: "Rossi", BirthCity: "Milano", Kind: models.KindInternal,
	}, "333-1234567")
	require.NoError(t, err)
	_, err = s.AddCourse(ctx, ip, models.Course{Code: "GO101", Title: "Introduction to Go"})
	require.NoError(t, err)
	_, err = s.Qualify(ctx, ip, models.Qualification{TeacherCF: "RSSMRA80A01F205X", CourseCode: "GO101"})
	require.NoError(t, err)
	cf := "RSSMRA80A01F205X"
	_, err = s.AddEdition(ctx, ip, models.Edition{Code: "GO101-2026", CourseCode: "GO101", TeacherCF: &cf})
	require.NoError(t, err)

	deps, err := s.RemoveTeacher(ctx, ip, cf)
	require.NoError(t, err)
	assert.Equal(t, 1, deps.Phones)
	assert.Equal(t, 1, deps.Qualifications)
	assert.Equal(t, 1, deps.Editions)

	got, err := s.Store().GetTeacher(ctx, cf)
	require.NoError(t, err)
	assert.Nil(t, got)

	edition, err := s.Store().GetEdition(ctx, "GO101-2026")
	require.NoError(t, err)
	require.NotNil(t, edition)
	assert.Nil(t, edition.TeacherCF)
}

func TestRemoveTeacherNotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.RemoveTeacher(context.Background(), "10.0.0.1", "UNKNOWN")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, auditActions(t, s))
}

func TestRemoveCourseRefusedWithDependencies(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ip := "10.0.0.1"

	_, err := s.AddCourse(ctx, ip, models.Course{Code: "GO101", Title: "Introduction to Go"})
	require.NoError(t, err)
	_, err = s.AddEdition(ctx, ip, models.Edition{Code: "GO101-2026", CourseCode: "GO101"})
	require.NoError(t, err)

	err = s.RemoveCourse(ctx, ip, "GO101")
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "course", depErr.Entity)
	assert.Equal(t, 1, depErr.Counts["editions"])

	// the course is still there
	c, err := s.Store().GetCourse(ctx, "GO101")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestRemoveCourseNotFound(t *testing.T) {
	s := newTestService(t)

	err := s.RemoveCourse(context.Background(), "10.0.0.1", "MISSING")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveParticipantRefusedWhileEnrolled(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ip := "10.0.0.1"

	_, err := s.AddCourse(ctx, ip, models.Course{Code: "GO101", Title: "Introduction to Go"})
	require.NoError(t, err)
	_, err = s.AddEdition(ctx, ip, models.Edition{Code: "GO101-2026", CourseCode: "GO101"})
	require.NoError(t, err)
	_, err = s.AddParticipant(ctx, ip, models.Participant{CF: "BNCGPP90C03L219K", LastName: "Bianchi"})
	require.NoError(t, err)
	_, err = s.Enroll(ctx, ip, models.Enrollment{ParticipantCF: "BNCGPP90C03L219K", EditionCode: "GO101-2026"})
	require.NoError(t, err)

	err = s.RemoveParticipant(ctx, ip, "BNCGPP90C03L219K")
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, 1, depErr.Counts["enrollments"])

	// after unenrolling, the delete goes through
	_, err = s.Unenroll(ctx, ip, "BNCGPP90C03L219K", "GO101-2026")
	require.NoError(t, err)
	require.NoError(t, s.RemoveParticipant(ctx, ip, "BNCGPP90C03L219K"))
}

func TestSetGradeMissingPairIsNoOp(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	err := s.SetGrade(ctx, "10.0.0.1", models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
		Grade:         intPtr(28),
	})
	require.NoError(t, err)

	// nothing created, nothing audited
	rows, err := s.Store().ListEnrollments(ctx, store.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, auditActions(t, s))
}

func TestSetGrade(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ip := "10.0.0.1"

	_, err := s.AddCourse(ctx, ip, models.Course{Code: "GO101", Title: "Introduction to Go"})
	require.NoError(t, err)
	_, err = s.AddEdition(ctx, ip, models.Edition{Code: "GO101-2026", CourseCode: "GO101"})
	require.NoError(t, err)
	_, err = s.AddParticipant(ctx, ip, models.Participant{CF: "BNCGPP90C03L219K", LastName: "Bianchi"})
	require.NoError(t, err)
	_, err = s.Enroll(ctx, ip, models.Enrollment{ParticipantCF: "BNCGPP90C03L219K", EditionCode: "GO101-2026"})
	require.NoError(t, err)

	err = s.SetGrade(ctx, ip, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
		Grade:         intPtr(30),
	})
	require.NoError(t, err)

	rows, err := s.Store().ListEnrollments(ctx, store.EnrollmentFilter{ParticipantCF: "BNCGPP90C03L219K"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Grade)
	assert.Equal(t, 30, *rows[0].Grade)
}

func TestUserErrorMessage(t *testing.T) {
	s := newTestService(t)
	boom := errors.New("connection refused")

	// production mode hides detail
	assert.NotContains(t, s.UserErrorMessage(boom), "connection refused")

	s.cfg.App.Debug = true
	assert.Equal(t, "connection refused", s.UserErrorMessage(boom))
}

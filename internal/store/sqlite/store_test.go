package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbianche/schooladmin/internal/models"
	"github.com/lbianche/schooladmin/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.ApplyMigrations("../../../migrations"))
	return st
}

func intPtr(n int) *int { return &n }

func seedTeacher(t *testing.T, st *Store, cf, last string) {
	t.Helper()
	created, err := st.CreateTeacher(context.Background(), models.Teacher{
		CF:        cf,
		FirstName: "Anna",
		LastName:  last,
		BirthCity: "Milano",
		Kind:      models.KindInternal,
	}, "")
	require.NoError(t, err)
	require.True(t, created)
}

func seedCourse(t *testing.T, st *Store, code, title string) {
	t.Helper()
	created, err := st.CreateCourse(context.Background(), models.Course{Code: code, Title: title})
	require.NoError(t, err)
	require.True(t, created)
}

func seedEdition(t *testing.T, st *Store, code, courseCode string, teacherCF *string) {
	t.Helper()
	created, err := st.CreateEdition(context.Background(), models.Edition{
		Code:       code,
		CourseCode: courseCode,
		TeacherCF:  teacherCF,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func seedParticipant(t *testing.T, st *Store, cf, last string) {
	t.Helper()
	created, err := st.CreateParticipant(context.Background(), models.Participant{
		CF:        cf,
		FirstName: "Luca",
		LastName:  last,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func TestCreateTeacherDuplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")

	created, err := st.CreateTeacher(ctx, models.Teacher{
		CF:        "RSSMRA80A01F205X",
		FirstName: "Other",
		LastName:  "Person",
		BirthCity: "Roma",
		Kind:      models.KindConsultant,
	}, "")
	require.NoError(t, err)
	assert.False(t, created)

	rows, err := st.ListTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// the losing insert must not overwrite the existing row
	assert.Equal(t, "Rossi", rows[0].LastName)
}

func TestCreateTeacherWithPhone(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.CreateTeacher(ctx, models.Teacher{
		CF:        "VRDLGI75B02H501Y",
		FirstName: "Luigi",
		LastName:  "Verdi",
		BirthCity: "Napoli",
		Kind:      models.KindConsultant,
	}, "333-1234567")
	require.NoError(t, err)
	require.True(t, created)

	phones, err := st.ListPhones(ctx, "VRDLGI75B02H501Y")
	require.NoError(t, err)
	assert.Equal(t, []string{"333-1234567"}, phones)
}

func TestUpdateTeacher(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")

	err := st.UpdateTeacher(ctx, models.Teacher{
		CF:        "RSSMRA80A01F205X",
		FirstName: "Maria",
		LastName:  "Rossi",
		BirthCity: "Torino",
		Kind:      models.KindConsultant,
	})
	require.NoError(t, err)

	got, err := st.GetTeacher(ctx, "RSSMRA80A01F205X")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Maria", got.FirstName)
	assert.Equal(t, "Torino", got.BirthCity)
	assert.Equal(t, models.KindConsultant, got.Kind)
}

func TestGetTeacherMissing(t *testing.T) {
	st := newTestStore(t)

	got, err := st.GetTeacher(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteTeacherCascade(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")
	seedCourse(t, st, "GO101", "Introduction to Go")
	seedCourse(t, st, "SQL201", "Advanced SQL")
	cf := "RSSMRA80A01F205X"
	seedEdition(t, st, "GO101-2026", "GO101", &cf)

	for _, number := range []string{"333-0000001", "333-0000002"} {
		added, err := st.AddPhone(ctx, cf, number)
		require.NoError(t, err)
		require.True(t, added)
	}
	for _, course := range []string{"GO101", "SQL201"} {
		created, err := st.CreateQualification(ctx, models.Qualification{TeacherCF: cf, CourseCode: course})
		require.NoError(t, err)
		require.True(t, created)
	}

	deps, err := st.DeleteTeacherCascade(ctx, cf)
	require.NoError(t, err)
	assert.Equal(t, 2, deps.Phones)
	assert.Equal(t, 2, deps.Qualifications)
	assert.Equal(t, 1, deps.Editions)

	got, err := st.GetTeacher(ctx, cf)
	require.NoError(t, err)
	assert.Nil(t, got)

	phones, err := st.ListPhones(ctx, cf)
	require.NoError(t, err)
	assert.Empty(t, phones)

	quals, err := st.ListQualifications(ctx, cf)
	require.NoError(t, err)
	assert.Empty(t, quals)

	// the edition survives, detached from the teacher
	edition, err := st.GetEdition(ctx, "GO101-2026")
	require.NoError(t, err)
	require.NotNil(t, edition)
	assert.Nil(t, edition.TeacherCF)
}

func TestDeleteTeacherCascadeNotFound(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")
	added, err := st.AddPhone(ctx, "RSSMRA80A01F205X", "333-0000001")
	require.NoError(t, err)
	require.True(t, added)

	deps, err := st.DeleteTeacherCascade(ctx, "UNKNOWN")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, deps)

	// the rollback must leave existing rows untouched
	phones, err := st.ListPhones(ctx, "RSSMRA80A01F205X")
	require.NoError(t, err)
	assert.Len(t, phones, 1)
}

func TestCourseLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedCourse(t, st, "GO101", "Introduction to Go")

	created, err := st.CreateCourse(ctx, models.Course{Code: "GO101", Title: "Another title"})
	require.NoError(t, err)
	assert.False(t, created)

	seedEdition(t, st, "GO101-2026", "GO101", nil)
	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")
	_, err = st.CreateQualification(ctx, models.Qualification{TeacherCF: "RSSMRA80A01F205X", CourseCode: "GO101"})
	require.NoError(t, err)

	editions, qualifications, err := st.CourseDependencies(ctx, "GO101")
	require.NoError(t, err)
	assert.Equal(t, 1, editions)
	assert.Equal(t, 1, qualifications)

	deleted, err := st.DeleteCourse(ctx, "MISSING")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestQualifications(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")
	seedTeacher(t, st, "VRDLGI75B02H501Y", "Verdi")
	seedCourse(t, st, "GO101", "Introduction to Go")
	seedCourse(t, st, "SQL201", "Advanced SQL")

	pairs := []models.Qualification{
		{TeacherCF: "RSSMRA80A01F205X", CourseCode: "GO101"},
		{TeacherCF: "RSSMRA80A01F205X", CourseCode: "SQL201"},
		{TeacherCF: "VRDLGI75B02H501Y", CourseCode: "GO101"},
	}
	for _, q := range pairs {
		created, err := st.CreateQualification(ctx, q)
		require.NoError(t, err)
		require.True(t, created)
	}

	// same pair again: no error, no new row
	created, err := st.CreateQualification(ctx, pairs[0])
	require.NoError(t, err)
	assert.False(t, created)

	all, err := st.ListQualifications(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := st.ListQualifications(ctx, "RSSMRA80A01F205X")
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	for _, row := range scoped {
		assert.Equal(t, "RSSMRA80A01F205X", row.TeacherCF)
		assert.Equal(t, "Anna Rossi", row.TeacherName)
	}

	stats, err := st.QualificationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Teachers)
	assert.Equal(t, 2, stats.Courses)

	// delete exactly one pair, the rest stays
	deleted, err := st.DeleteQualification(ctx, pairs[0])
	require.NoError(t, err)
	assert.True(t, deleted)

	remaining, err := st.ListQualifications(ctx, "")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	deleted, err = st.DeleteQualification(ctx, pairs[0])
	require.NoError(t, err)
	assert.False(t, deleted)
}

func seedEnrollmentFixture(t *testing.T, st *Store) {
	t.Helper()
	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")
	seedCourse(t, st, "GO101", "Introduction to Go")
	cf := "RSSMRA80A01F205X"
	seedEdition(t, st, "GO101-2026", "GO101", &cf)
	seedEdition(t, st, "GO101-2027", "GO101", nil)
	seedParticipant(t, st, "BNCGPP90C03L219K", "Bianchi")
	seedParticipant(t, st, "FRRLRA92D44A662M", "Ferrari")
}

func TestEnrollments(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedEnrollmentFixture(t, st)

	created, err := st.CreateEnrollment(ctx, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
		Grade:         intPtr(28),
	})
	require.NoError(t, err)
	require.True(t, created)

	created, err = st.CreateEnrollment(ctx, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2027",
	})
	require.NoError(t, err)
	require.True(t, created)

	created, err = st.CreateEnrollment(ctx, models.Enrollment{
		ParticipantCF: "FRRLRA92D44A662M",
		EditionCode:   "GO101-2026",
		Grade:         intPtr(22),
	})
	require.NoError(t, err)
	require.True(t, created)

	// duplicate pair, even with a different grade, adds nothing
	created, err = st.CreateEnrollment(ctx, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
		Grade:         intPtr(10),
	})
	require.NoError(t, err)
	assert.False(t, created)

	all, err := st.ListEnrollments(ctx, store.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byParticipant, err := st.ListEnrollments(ctx, store.EnrollmentFilter{ParticipantCF: "BNCGPP90C03L219K"})
	require.NoError(t, err)
	assert.Len(t, byParticipant, 2)

	byEdition, err := st.ListEnrollments(ctx, store.EnrollmentFilter{EditionCode: "GO101-2026"})
	require.NoError(t, err)
	assert.Len(t, byEdition, 2)

	both, err := st.ListEnrollments(ctx, store.EnrollmentFilter{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
	})
	require.NoError(t, err)
	require.Len(t, both, 1)
	require.NotNil(t, both[0].Grade)
	assert.Equal(t, 28, *both[0].Grade)
	assert.Equal(t, "Introduction to Go", both[0].CourseTitle)
}

func TestUpdateEnrollmentGrade(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedEnrollmentFixture(t, st)

	created, err := st.CreateEnrollment(ctx, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
	})
	require.NoError(t, err)
	require.True(t, created)

	affected, err := st.UpdateEnrollmentGrade(ctx, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
		Grade:         intPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err := st.ListEnrollments(ctx, store.EnrollmentFilter{ParticipantCF: "BNCGPP90C03L219K"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Grade)
	assert.Equal(t, 30, *rows[0].Grade)

	// clearing the grade is distinct from grade zero
	affected, err = st.UpdateEnrollmentGrade(ctx, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err = st.ListEnrollments(ctx, store.EnrollmentFilter{ParticipantCF: "BNCGPP90C03L219K"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Grade)
}

func TestUpdateEnrollmentGradeMissingPair(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedEnrollmentFixture(t, st)

	affected, err := st.UpdateEnrollmentGrade(ctx, models.Enrollment{
		ParticipantCF: "BNCGPP90C03L219K",
		EditionCode:   "GO101-2026",
		Grade:         intPtr(25),
	})
	require.NoError(t, err)
	assert.Zero(t, affected)

	// the update must not have created a row either
	rows, err := st.ListEnrollments(ctx, store.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteEnrollmentPrecise(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedEnrollmentFixture(t, st)

	for _, e := range []models.Enrollment{
		{ParticipantCF: "BNCGPP90C03L219K", EditionCode: "GO101-2026"},
		{ParticipantCF: "BNCGPP90C03L219K", EditionCode: "GO101-2027"},
		{ParticipantCF: "FRRLRA92D44A662M", EditionCode: "GO101-2026"},
	} {
		created, err := st.CreateEnrollment(ctx, e)
		require.NoError(t, err)
		require.True(t, created)
	}

	deleted, err := st.DeleteEnrollment(ctx, "BNCGPP90C03L219K", "GO101-2026")
	require.NoError(t, err)
	assert.True(t, deleted)

	rows, err := st.ListEnrollments(ctx, store.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// same participant keeps the other edition
	byParticipant, err := st.ListEnrollments(ctx, store.EnrollmentFilter{ParticipantCF: "BNCGPP90C03L219K"})
	require.NoError(t, err)
	require.Len(t, byParticipant, 1)
	assert.Equal(t, "GO101-2027", byParticipant[0].EditionCode)
}

func TestEnrollmentStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedEnrollmentFixture(t, st)

	stats, err := st.EnrollmentStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Nil(t, stats.AvgGrade)

	for _, e := range []models.Enrollment{
		{ParticipantCF: "BNCGPP90C03L219K", EditionCode: "GO101-2026", Grade: intPtr(20)},
		{ParticipantCF: "FRRLRA92D44A662M", EditionCode: "GO101-2026", Grade: intPtr(30)},
		{ParticipantCF: "BNCGPP90C03L219K", EditionCode: "GO101-2027"},
	} {
		created, err := st.CreateEnrollment(ctx, e)
		require.NoError(t, err)
		require.True(t, created)
	}

	stats, err = st.EnrollmentStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Participants)
	assert.Equal(t, 2, stats.Editions)
	assert.Equal(t, 2, stats.Graded)
	require.NotNil(t, stats.AvgGrade)
	assert.InDelta(t, 25.0, *stats.AvgGrade, 0.001)
}

func TestSearch(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossini")
	seedCourse(t, st, "GO101", "Introduction to Go")
	seedCourse(t, st, "ROS01", "Rossini appreciation")
	seedEdition(t, st, "GO101-2026", "GO101", nil)
	seedParticipant(t, st, "BNCGPP90C03L219K", "Rossi")

	results, err := st.Search(ctx, "Rossi", 20)
	require.NoError(t, err)
	assert.Len(t, results.Teachers, 1)
	assert.Len(t, results.Courses, 1)
	assert.Empty(t, results.Editions)
	assert.Len(t, results.Participants, 1)
	assert.Equal(t, 3, results.Total())

	// edition codes match too, via the course title join
	results, err = st.Search(ctx, "Introduction", 20)
	require.NoError(t, err)
	assert.Len(t, results.Courses, 1)
	assert.Len(t, results.Editions, 1)

	results, err = st.Search(ctx, "zzz-no-match", 20)
	require.NoError(t, err)
	assert.Zero(t, results.Total())

	results, err = st.Search(ctx, "", 20)
	require.NoError(t, err)
	assert.Zero(t, results.Total())
}

func TestSearchLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedTeacher(t, st, "CF0000000000000"+string(rune('A'+i)), "Comune")
	}

	results, err := st.Search(ctx, "Comune", 3)
	require.NoError(t, err)
	assert.Len(t, results.Teachers, 3)
}

func TestDashboard(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTeacher(t, st, "RSSMRA80A01F205X", "Rossi")
	seedCourse(t, st, "GO101", "Introduction to Go")
	seedCourse(t, st, "SQL201", "Advanced SQL")
	seedEdition(t, st, "GO101-2026", "GO101", nil)
	seedEdition(t, st, "GO101-2027", "GO101", nil)
	seedParticipant(t, st, "BNCGPP90C03L219K", "Bianchi")

	d, err := st.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Teachers)
	assert.Equal(t, 2, d.Courses)
	assert.Equal(t, 2, d.Editions)
	assert.Equal(t, 1, d.Participants)
	require.Len(t, d.LatestTeachers, 1)
	require.NotEmpty(t, d.PopularCourses)
	assert.Equal(t, "Introduction to Go", d.PopularCourses[0].Title)
	assert.Equal(t, 2, d.PopularCourses[0].NumEditions)
}

func TestAuditRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := models.AuditEntry{
		ID:        "00000000-0000-0000-0000-000000000001",
		At:        time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		IP:        "10.0.0.1",
		Action:    "add",
		Entity:    "teacher",
		EntityKey: "RSSMRA80A01F205X",
		Detail:    "Anna Rossi",
	}
	second := first
	second.ID = "00000000-0000-0000-0000-000000000002"
	second.At = first.At.Add(time.Hour)
	second.Action = "delete"

	require.NoError(t, st.RecordAudit(ctx, first))
	require.NoError(t, st.RecordAudit(ctx, second))

	entries, err := st.ListAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// newest first
	assert.Equal(t, "delete", entries[0].Action)
	assert.Equal(t, "add", entries[1].Action)

	entries, err = st.ListAudit(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package store

import (
	"context"
	"fmt"

	"github.com/lbianche/schooladmin/internal/models"
)

// Qualifications and enrollments are the two composite-key association
// tables. Creates rely on the primary key plus ON CONFLICT DO NOTHING, so
// "already exists" is detected atomically from the affected-row count
// instead of a separate lookup.

func (s *BaseStore) ListQualifications(ctx context.Context, teacherCF string) ([]models.QualificationRow, error) {
	query := `
		SELECT q.teacher_cf, q.course_code,
		       t.first_name || ' ' || t.last_name AS teacher_name,
		       c.title AS course_title
		FROM qualifications q
		JOIN teachers t ON q.teacher_cf = t.cf
		JOIN courses c ON q.course_code = c.code
	`
	where, args := NewWhereBuilder().Add("q.teacher_cf", teacherCF).Build()
	query += where + ` ORDER BY teacher_name, c.title`

	var rows []models.QualificationRow
	if err := s.DB.SelectContext(ctx, &rows, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) CreateQualification(ctx context.Context, q models.Qualification) (bool, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO qualifications (teacher_cf, course_code)
		VALUES (:teacher_cf, :course_code)
		ON CONFLICT (teacher_cf, course_code) DO NOTHING
	`, q)
	if err != nil {
		return false, fmt.Errorf("failed to create qualification: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) DeleteQualification(ctx context.Context, q models.Qualification) (bool, error) {
	query := s.DB.Rebind(`
		DELETE FROM qualifications WHERE teacher_cf = ? AND course_code = ?
	`)
	res, err := s.DB.ExecContext(ctx, query, q.TeacherCF, q.CourseCode)
	if err != nil {
		return false, fmt.Errorf("failed to delete qualification: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) QualificationStats(ctx context.Context) (*models.QualificationStats, error) {
	var stats models.QualificationStats
	err := s.DB.GetContext(ctx, &stats, `
		SELECT COUNT(*)                    AS total,
		       COUNT(DISTINCT teacher_cf)  AS teachers,
		       COUNT(DISTINCT course_code) AS courses
		FROM qualifications
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get qualification stats: %w", err)
	}
	return &stats, nil
}

func (s *BaseStore) ListEnrollments(ctx context.Context, f EnrollmentFilter) ([]models.EnrollmentRow, error) {
	query := `
		SELECT en.participant_cf, en.edition_code, en.grade,
		       p.first_name || ' ' || p.last_name AS participant_name,
		       e.course_code,
		       c.title AS course_title,
		       t.first_name || ' ' || t.last_name AS teacher_name
		FROM enrollments en
		JOIN participants p ON en.participant_cf = p.cf
		JOIN editions e ON en.edition_code = e.code
		JOIN courses c ON e.course_code = c.code
		LEFT JOIN teachers t ON e.teacher_cf = t.cf
	`
	where, args := NewWhereBuilder().
		Add("en.participant_cf", f.ParticipantCF).
		Add("en.edition_code", f.EditionCode).
		Build()
	query += where + ` ORDER BY participant_name, en.edition_code`

	var rows []models.EnrollmentRow
	if err := s.DB.SelectContext(ctx, &rows, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) CreateEnrollment(ctx context.Context, e models.Enrollment) (bool, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO enrollments (participant_cf, edition_code, grade)
		VALUES (:participant_cf, :edition_code, :grade)
		ON CONFLICT (participant_cf, edition_code) DO NOTHING
	`, e)
	if err != nil {
		return false, fmt.Errorf("failed to create enrollment: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) UpdateEnrollmentGrade(ctx context.Context, e models.Enrollment) (int64, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		UPDATE enrollments
		SET grade = :grade
		WHERE participant_cf = :participant_cf AND edition_code = :edition_code
	`, e)
	if err != nil {
		return 0, fmt.Errorf("failed to update enrollment grade: %w", err)
	}
	return rowsAffected(res)
}

func (s *BaseStore) DeleteEnrollment(ctx context.Context, participantCF, editionCode string) (bool, error) {
	query := s.DB.Rebind(`
		DELETE FROM enrollments WHERE participant_cf = ? AND edition_code = ?
	`)
	res, err := s.DB.ExecContext(ctx, query, participantCF, editionCode)
	if err != nil {
		return false, fmt.Errorf("failed to delete enrollment: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) EnrollmentStats(ctx context.Context) (*models.EnrollmentStats, error) {
	var stats models.EnrollmentStats
	err := s.DB.GetContext(ctx, &stats, `
		SELECT COUNT(*)                       AS total,
		       COUNT(DISTINCT participant_cf) AS participants,
		       COUNT(DISTINCT edition_code)   AS editions,
		       COUNT(grade)                   AS graded,
		       AVG(grade)                     AS avg_grade
		FROM enrollments
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment stats: %w", err)
	}
	return &stats, nil
}

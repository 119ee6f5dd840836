package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lbianche/schooladmin/internal/models"
)

func (s *BaseStore) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.DB.SelectContext(ctx, &courses, `
		SELECT code, title FROM courses ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) GetCourse(ctx context.Context, code string) (*models.Course, error) {
	var c models.Course
	query := s.DB.Rebind(`SELECT code, title FROM courses WHERE code = ?`)
	err := s.DB.GetContext(ctx, &c, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

func (s *BaseStore) CreateCourse(ctx context.Context, c models.Course) (bool, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO courses (code, title) VALUES (:code, :title)
		ON CONFLICT (code) DO NOTHING
	`, c)
	if err != nil {
		return false, fmt.Errorf("failed to create course: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) CourseDependencies(ctx context.Context, code string) (int, int, error) {
	var deps struct {
		Editions       int `db:"editions"`
		Qualifications int `db:"qualifications"`
	}
	query := s.DB.Rebind(`
		SELECT
		  (SELECT COUNT(*) FROM editions       WHERE course_code = ?) AS editions,
		  (SELECT COUNT(*) FROM qualifications WHERE course_code = ?) AS qualifications
	`)
	if err := s.DB.GetContext(ctx, &deps, query, code, code); err != nil {
		return 0, 0, fmt.Errorf("failed to count course dependencies: %w", err)
	}
	return deps.Editions, deps.Qualifications, nil
}

func (s *BaseStore) DeleteCourse(ctx context.Context, code string) (bool, error) {
	query := s.DB.Rebind(`DELETE FROM courses WHERE code = ?`)
	res, err := s.DB.ExecContext(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete course: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) ListEditions(ctx context.Context) ([]models.EditionRow, error) {
	var rows []models.EditionRow
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT e.code, e.course_code, e.teacher_cf,
		       c.title AS course_title,
		       t.first_name || ' ' || t.last_name AS teacher_name
		FROM editions e
		JOIN courses c ON e.course_code = c.code
		LEFT JOIN teachers t ON e.teacher_cf = t.cf
		ORDER BY e.code DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list editions: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) GetEdition(ctx context.Context, code string) (*models.EditionRow, error) {
	var e models.EditionRow
	query := s.DB.Rebind(`
		SELECT e.code, e.course_code, e.teacher_cf,
		       c.title AS course_title,
		       t.first_name || ' ' || t.last_name AS teacher_name
		FROM editions e
		JOIN courses c ON e.course_code = c.code
		LEFT JOIN teachers t ON e.teacher_cf = t.cf
		WHERE e.code = ?
	`)
	err := s.DB.GetContext(ctx, &e, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get edition: %w", err)
	}
	return &e, nil
}

func (s *BaseStore) CreateEdition(ctx context.Context, e models.Edition) (bool, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO editions (code, course_code, teacher_cf)
		VALUES (:code, :course_code, :teacher_cf)
		ON CONFLICT (code) DO NOTHING
	`, e)
	if err != nil {
		return false, fmt.Errorf("failed to create edition: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) EditionEnrollments(ctx context.Context, code string) (int, error) {
	var n int
	query := s.DB.Rebind(`SELECT COUNT(*) FROM enrollments WHERE edition_code = ?`)
	if err := s.DB.GetContext(ctx, &n, query, code); err != nil {
		return 0, fmt.Errorf("failed to count edition enrollments: %w", err)
	}
	return n, nil
}

func (s *BaseStore) DeleteEdition(ctx context.Context, code string) (bool, error) {
	query := s.DB.Rebind(`DELETE FROM editions WHERE code = ?`)
	res, err := s.DB.ExecContext(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete edition: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	var parts []models.Participant
	err := s.DB.SelectContext(ctx, &parts, `
		SELECT cf, first_name, last_name FROM participants ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return parts, nil
}

func (s *BaseStore) GetParticipant(ctx context.Context, cf string) (*models.Participant, error) {
	var p models.Participant
	query := s.DB.Rebind(`SELECT cf, first_name, last_name FROM participants WHERE cf = ?`)
	err := s.DB.GetContext(ctx, &p, query, cf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}

func (s *BaseStore) CreateParticipant(ctx context.Context, p models.Participant) (bool, error) {
	res, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO participants (cf, first_name, last_name)
		VALUES (:cf, :first_name, :last_name)
		ON CONFLICT (cf) DO NOTHING
	`, p)
	if err != nil {
		return false, fmt.Errorf("failed to create participant: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) ParticipantEnrollments(ctx context.Context, cf string) (int, error) {
	var n int
	query := s.DB.Rebind(`SELECT COUNT(*) FROM enrollments WHERE participant_cf = ?`)
	if err := s.DB.GetContext(ctx, &n, query, cf); err != nil {
		return 0, fmt.Errorf("failed to count participant enrollments: %w", err)
	}
	return n, nil
}

func (s *BaseStore) DeleteParticipant(ctx context.Context, cf string) (bool, error) {
	query := s.DB.Rebind(`DELETE FROM participants WHERE cf = ?`)
	res, err := s.DB.ExecContext(ctx, query, cf)
	if err != nil {
		return false, fmt.Errorf("failed to delete participant: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lbianche/schooladmin/internal/models"
)

func (s *BaseStore) ListTeachers(ctx context.Context) ([]models.TeacherRow, error) {
	var rows []models.TeacherRow
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT t.cf, t.first_name, t.last_name, t.birth_city, t.kind,
		       COUNT(DISTINCT q.course_code) AS num_qualifications,
		       COUNT(DISTINCT e.code)        AS num_editions
		FROM teachers t
		LEFT JOIN qualifications q ON q.teacher_cf = t.cf
		LEFT JOIN editions e ON e.teacher_cf = t.cf
		GROUP BY t.cf, t.first_name, t.last_name, t.birth_city, t.kind
		ORDER BY t.last_name, t.first_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) GetTeacher(ctx context.Context, cf string) (*models.Teacher, error) {
	var t models.Teacher
	query := s.DB.Rebind(`
		SELECT cf, first_name, last_name, birth_city, kind
		FROM teachers
		WHERE cf = ?
	`)
	err := s.DB.GetContext(ctx, &t, query, cf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return &t, nil
}

func (s *BaseStore) CreateTeacher(ctx context.Context, t models.Teacher, phone string) (bool, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO teachers (cf, first_name, last_name, birth_city, kind)
		VALUES (:cf, :first_name, :last_name, :birth_city, :kind)
		ON CONFLICT (cf) DO NOTHING
	`, t)
	if err != nil {
		return false, fmt.Errorf("failed to create teacher: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	if n == 0 {
		// fiscal code already registered
		return false, nil
	}

	if phone != "" {
		insert := tx.Rebind(`INSERT INTO phone_numbers (teacher_cf, number) VALUES (?, ?)`)
		if _, err := tx.ExecContext(ctx, insert, t.CF, phone); err != nil {
			return false, fmt.Errorf("failed to add phone number: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

func (s *BaseStore) UpdateTeacher(ctx context.Context, t models.Teacher) error {
	_, err := s.DB.NamedExecContext(ctx, `
		UPDATE teachers
		SET first_name = :first_name,
		    last_name  = :last_name,
		    birth_city = :birth_city,
		    kind       = :kind
		WHERE cf = :cf
	`, t)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	return nil
}

func (s *BaseStore) TeacherDependencies(ctx context.Context, cf string) (*models.TeacherDependencies, error) {
	var deps models.TeacherDependencies
	query := s.DB.Rebind(`
		SELECT
		  (SELECT COUNT(*) FROM phone_numbers  WHERE teacher_cf = ?) AS phones,
		  (SELECT COUNT(*) FROM qualifications WHERE teacher_cf = ?) AS qualifications,
		  (SELECT COUNT(*) FROM editions       WHERE teacher_cf = ?) AS editions
	`)
	if err := s.DB.GetContext(ctx, &deps, query, cf, cf, cf); err != nil {
		return nil, fmt.Errorf("failed to count teacher dependencies: %w", err)
	}
	return &deps, nil
}

// DeleteTeacherCascade resolves everything hanging off the teacher in a
// fixed order inside one transaction: hard-linked rows (phone numbers,
// qualifications) are deleted, editions merely referencing the teacher as
// responsible are detached, then the teacher row itself is removed. If the
// teacher row turns out not to exist the whole transaction is rolled back.
func (s *BaseStore) DeleteTeacherCascade(ctx context.Context, cf string) (*models.TeacherDependencies, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var deps models.TeacherDependencies

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM phone_numbers WHERE teacher_cf = ?`), cf)
	if err != nil {
		return nil, fmt.Errorf("failed to delete phone numbers: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return nil, err
	} else {
		deps.Phones = int(n)
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM qualifications WHERE teacher_cf = ?`), cf)
	if err != nil {
		return nil, fmt.Errorf("failed to delete qualifications: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return nil, err
	} else {
		deps.Qualifications = int(n)
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE editions SET teacher_cf = NULL WHERE teacher_cf = ?`), cf)
	if err != nil {
		return nil, fmt.Errorf("failed to detach editions: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return nil, err
	} else {
		deps.Editions = int(n)
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM teachers WHERE cf = ?`), cf)
	if err != nil {
		return nil, fmt.Errorf("failed to delete teacher: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// unknown fiscal code: leave the database untouched
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return &deps, nil
}

func (s *BaseStore) ListPhones(ctx context.Context, cf string) ([]string, error) {
	var numbers []string
	query := s.DB.Rebind(`SELECT number FROM phone_numbers WHERE teacher_cf = ? ORDER BY number`)
	if err := s.DB.SelectContext(ctx, &numbers, query, cf); err != nil {
		return nil, fmt.Errorf("failed to list phone numbers: %w", err)
	}
	return numbers, nil
}

func (s *BaseStore) AddPhone(ctx context.Context, cf, number string) (bool, error) {
	query := s.DB.Rebind(`
		INSERT INTO phone_numbers (teacher_cf, number) VALUES (?, ?)
		ON CONFLICT (teacher_cf, number) DO NOTHING
	`)
	res, err := s.DB.ExecContext(ctx, query, cf, number)
	if err != nil {
		return false, fmt.Errorf("failed to add phone number: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BaseStore) DeletePhone(ctx context.Context, cf, number string) (bool, error) {
	query := s.DB.Rebind(`DELETE FROM phone_numbers WHERE teacher_cf = ? AND number = ?`)
	res, err := s.DB.ExecContext(ctx, query, cf, number)
	if err != nil {
		return false, fmt.Errorf("failed to delete phone number: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

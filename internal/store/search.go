package store

import (
	"context"
	"fmt"

	"github.com/lbianche/schooladmin/internal/models"
)

// Search fans out independent LIKE queries over the four entity tables.
// Every user-supplied value stays bound; the wildcard wrapping happens here.
func (s *BaseStore) Search(ctx context.Context, term string, limit int) (*models.SearchResults, error) {
	results := &models.SearchResults{}
	if term == "" {
		return results, nil
	}
	pattern := "%" + term + "%"

	query := s.DB.Rebind(`
		SELECT cf, first_name, last_name, birth_city, kind
		FROM teachers
		WHERE first_name LIKE ? OR last_name LIKE ? OR cf LIKE ?
		ORDER BY last_name, first_name
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &results.Teachers, query, pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search teachers: %w", err)
	}

	query = s.DB.Rebind(`
		SELECT code, title
		FROM courses
		WHERE title LIKE ? OR code LIKE ?
		ORDER BY title
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &results.Courses, query, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}

	query = s.DB.Rebind(`
		SELECT e.code, e.course_code, e.teacher_cf,
		       c.title AS course_title,
		       t.first_name || ' ' || t.last_name AS teacher_name
		FROM editions e
		JOIN courses c ON e.course_code = c.code
		LEFT JOIN teachers t ON e.teacher_cf = t.cf
		WHERE e.code LIKE ? OR c.title LIKE ? OR t.first_name || ' ' || t.last_name LIKE ?
		ORDER BY e.code DESC
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &results.Editions, query, pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search editions: %w", err)
	}

	query = s.DB.Rebind(`
		SELECT cf, first_name, last_name
		FROM participants
		WHERE first_name LIKE ? OR last_name LIKE ? OR cf LIKE ?
		ORDER BY last_name, first_name
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &results.Participants, query, pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search participants: %w", err)
	}

	return results, nil
}

func (s *BaseStore) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	var d models.Dashboard

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM teachers`, &d.Teachers},
		{`SELECT COUNT(*) FROM courses`, &d.Courses},
		{`SELECT COUNT(*) FROM editions`, &d.Editions},
		{`SELECT COUNT(*) FROM participants`, &d.Participants},
	}
	for _, c := range counts {
		if err := s.DB.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("failed to load dashboard counts: %w", err)
		}
	}

	err := s.DB.SelectContext(ctx, &d.LatestTeachers, `
		SELECT cf, first_name, last_name, birth_city, kind
		FROM teachers
		ORDER BY cf DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest teachers: %w", err)
	}

	err = s.DB.SelectContext(ctx, &d.PopularCourses, `
		SELECT c.title, COUNT(e.code) AS num_editions
		FROM courses c
		LEFT JOIN editions e ON e.course_code = c.code
		GROUP BY c.code, c.title
		ORDER BY num_editions DESC, c.title
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular courses: %w", err)
	}

	return &d, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/lbianche/schooladmin/internal/models"
)

func (s *BaseStore) RecordAudit(ctx context.Context, e models.AuditEntry) error {
	_, err := s.DB.NamedExecContext(ctx, `
		INSERT INTO audit_log (id, at, ip, action, entity, entity_key, detail)
		VALUES (:id, :at, :ip, :action, :entity, :entity_key, :detail)
	`, e)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (s *BaseStore) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	query := s.DB.Rebind(`
		SELECT id, at, ip, action, entity, entity_key, detail
		FROM audit_log
		ORDER BY at DESC
		LIMIT ?
	`)
	if err := s.DB.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

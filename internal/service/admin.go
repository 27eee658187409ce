package service

import (
	"context"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
)

// ListTables returns the names of every queryable table. Requires
// VIEW_ADMIN_TABLES (OWNER only).
func (s *Service) ListTables(ctx context.Context, callerName string) ([]string, error) {
	if _, err := s.authorize(ctx, callerName, authz.PermViewAdminTables); err != nil {
		return nil, err
	}
	return s.d.Storage.Query.ListTables(ctx)
}

// TableData dumps a named table's rows. Requires VIEW_ADMIN_TABLES.
func (s *Service) TableData(ctx context.Context, callerName, tableName string) ([]map[string]any, error) {
	if _, err := s.authorize(ctx, callerName, authz.PermViewAdminTables); err != nil {
		return nil, err
	}
	return s.d.Storage.Query.TableData(ctx, tableName)
}

// ListPermissions returns the permissions granted to a role, for the
// admin UI's role reference panel.
func (s *Service) ListPermissions(role domain.Role) []authz.Permission {
	return authz.ListPermissions(role)
}

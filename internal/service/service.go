// Package service implements the Service orchestrator named in
// spec.md §4.6: validate, authorize, append, synchronize, answer
// queries. Every exported method on Service corresponds to one
// operation in the spec and follows the same five-step pattern.
package service

import (
	"context"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
	"kv-shepherd.io/shepherd/internal/integrations"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
	"kv-shepherd.io/shepherd/internal/storage"
	"kv-shepherd.io/shepherd/internal/token"
)

// Deps bundles every collaborator the Service depends on, built once at
// startup by the caller (cmd/server, or a test harness) and handed to
// New — the same manual-dependency-injection shape the teacher uses for
// its ServerDeps/NewServer pair, generalized from HTTP handlers to the
// domain orchestrator.
type Deps struct {
	Storage   storage.Triple
	Clock     integrations.Clock
	IDs       integrations.UniqueIDGenerator
	Passwords integrations.PasswordUtil
	Notify    integrations.Notifications
	Tokens    *token.Issuer
}

// Service is the domain orchestrator. Safe for concurrent use; all
// state lives in Deps.Storage.
type Service struct {
	d Deps
}

// New constructs a Service from deps. Every field of deps must be set;
// this is not validated here since the caller (bootstrap) owns the
// wiring contract.
func New(deps Deps) *Service {
	return &Service{d: deps}
}

// append writes one event and synchronizes the Command Model before
// returning, giving the caller read-your-writes within this process
// (spec.md §9, "Synchronize on the write path").
func (s *Service) append(ctx context.Context, authority string, event domain.DomainEvent) (int64, error) {
	id, err := s.d.Storage.Log.Append(ctx, authority, s.d.Clock.Now(), event)
	if err != nil {
		return 0, err
	}
	if err := s.synchronize(ctx); err != nil {
		// Failures here do not fail the request (spec.md §7): the event
		// is durable and idempotent re-application on the next
		// synchronize() call will pick it up.
		s.d.Notify.Notify("synchronize_failed", "event", "", authority, map[string]any{"error": err.Error()})
	}
	return id, nil
}

// synchronize drains every event after lastSynced into the Command
// Model and advances the cursor. Exported only within the package;
// callers reach it indirectly through append, or directly through
// the exported Synchronize.
func (s *Service) synchronize(ctx context.Context) error {
	cursor, err := s.d.Storage.Command.LastSynced(ctx)
	if err != nil {
		return err
	}
	pending, err := s.d.Storage.Log.EventsAfter(ctx, cursor)
	if err != nil {
		return err
	}
	for _, env := range pending {
		if err := s.d.Storage.Command.Apply(ctx, env); err != nil {
			return err
		}
		if err := s.d.Storage.Command.SetLastSynced(ctx, env.EventID); err != nil {
			return err
		}
	}
	return nil
}

// Synchronize exposes the drain loop for callers outside a single
// append (e.g. a future background projector per spec.md §9's
// production note). cmd/seed does not call it: each Service method it
// uses synchronizes on its own.
func (s *Service) Synchronize(ctx context.Context) error {
	return s.synchronize(ctx)
}

// authorize loads callerName's role and checks permission, returning
// Forbidden if absent or unauthorized. NotFound on a missing caller is
// deliberately reported as Forbidden, never NotFound: an invalid
// identity must not leak whether the name exists.
func (s *Service) authorize(ctx context.Context, callerName string, permission authz.Permission) (domain.Role, error) {
	caller, err := s.d.Storage.Query.FindUserByName(ctx, callerName)
	if err != nil {
		return "", apperrors.Forbidden(apperrors.CodePermissionDenied, "caller is not a recognized user")
	}
	if !authz.RoleHasPermission(caller.Role, permission) {
		return "", apperrors.Forbidden(apperrors.CodePermissionDenied, "role "+string(caller.Role)+" lacks permission "+string(permission))
	}
	return caller.Role, nil
}

// requireElectionOwner loads the election and checks that callerName is
// either its owner (MANAGE_OWN_ELECTION suffices) or holds
// MANAGE_ANY_ELECTION.
func (s *Service) requireElectionOwner(ctx context.Context, callerName, electionName string) (*domain.Election, error) {
	e, err := s.d.Storage.Query.SearchElectionByName(ctx, electionName)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperrors.NotFound(apperrors.CodeElectionNotFound, "election "+electionName+" not found")
	}
	caller, err := s.d.Storage.Query.FindUserByName(ctx, callerName)
	if err != nil {
		return nil, apperrors.Forbidden(apperrors.CodePermissionDenied, "caller is not a recognized user")
	}
	if caller.Name == e.OwnerName && authz.RoleHasPermission(caller.Role, authz.PermManageOwnElection) {
		return e, nil
	}
	if authz.RoleHasPermission(caller.Role, authz.PermManageAnyElection) {
		return e, nil
	}
	return nil, apperrors.Forbidden(apperrors.CodePermissionDenied, "caller may not manage election "+electionName)
}

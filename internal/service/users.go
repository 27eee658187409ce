package service

import (
	"context"
	"strings"

	"kv-shepherd.io/shepherd/internal/authz"
	"kv-shepherd.io/shepherd/internal/domain"
	apperrors "kv-shepherd.io/shepherd/internal/pkg/errors"
)

func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.ValidationFailed(apperrors.CodeNameInvalid, field+" must not be empty")
	}
	return nil
}

// Register creates a new User — the first ever registrant becomes
// OWNER, every later one USER (spec.md §4.2, §8 property 6) — and
// immediately issues a token pair so the caller can act as the new
// identity without a separate login round trip.
func (s *Service) Register(ctx context.Context, name, email, password string) (access, refresh string, err error) {
	if err := validateName("name", name); err != nil {
		return "", "", err
	}
	if err := validateName("email", email); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(password) == "" {
		return "", "", apperrors.ValidationFailed(apperrors.CodeValidationFailed, "password must not be empty")
	}

	if existing, _ := s.d.Storage.Query.FindUserByName(ctx, name); existing != nil {
		return "", "", apperrors.Conflict(apperrors.CodeUserExists, "user "+name+" already exists")
	}
	if existing, _ := s.d.Storage.Query.SearchUserByEmail(ctx, email); existing != nil {
		return "", "", apperrors.Conflict(apperrors.CodeEmailExists, "email "+email+" already registered")
	}

	salt, hash, err := s.d.Passwords.CreateSaltAndHash(password)
	if err != nil {
		return "", "", apperrors.Internal(apperrors.CodeValidationFailed, "hash password: "+err.Error())
	}

	if _, err := s.append(ctx, name, domain.DomainEvent{
		Type: domain.EventUserRegistered,
		UserRegistered: &domain.UserRegistered{
			Name: name, Email: email, Salt: salt, Hash: hash,
		},
	}); err != nil {
		return "", "", err
	}

	u, err := s.d.Storage.Query.FindUserByName(ctx, name)
	if err != nil {
		return "", "", err
	}
	s.d.Notify.Notify("user_registered", "user", name, name, nil)
	return s.d.Tokens.Issue(u.Name, u.Role)
}

// Login verifies password and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, name, password string) (access, refresh string, err error) {
	u, err := s.d.Storage.Query.FindUserByName(ctx, name)
	if err != nil {
		return "", "", apperrors.Unauthorized(apperrors.CodeInvalidCredential, "invalid credentials")
	}
	if !s.d.Passwords.Verify(password, u.Salt, u.Hash) {
		return "", "", apperrors.Unauthorized(apperrors.CodeInvalidCredential, "invalid credentials")
	}
	return s.d.Tokens.Issue(u.Name, u.Role)
}

// RefreshToken rotates a refresh token into a fresh pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (access, refresh string, err error) {
	return s.d.Tokens.Refresh(ctx, refreshToken)
}

// SetRole changes target's role. Only a caller with MANAGE_USERS may
// call this, and the sole OWNER may never be demoted (spec.md §3,
// "exactly one OWNER exists at any time").
func (s *Service) SetRole(ctx context.Context, callerName, targetName string, role domain.Role) error {
	if _, err := s.authorize(ctx, callerName, authz.PermManageUsers); err != nil {
		return err
	}
	target, err := s.d.Storage.Query.FindUserByName(ctx, targetName)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner && role != domain.RoleOwner {
		return apperrors.PreconditionFailed(apperrors.CodeLastOwner, "cannot demote the sole OWNER")
	}
	if _, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:            domain.EventUserRoleChanged,
		UserRoleChanged: &domain.UserRoleChanged{Name: targetName, Role: role},
	}); err != nil {
		return err
	}
	s.d.Notify.Notify("user_role_changed", "user", targetName, callerName, map[string]any{"role": role})
	return nil
}

// SetPassword changes target's password. A caller may always change
// their own; MANAGE_USERS is required to change someone else's.
func (s *Service) SetPassword(ctx context.Context, callerName, targetName, newPassword string) error {
	if callerName != targetName {
		if _, err := s.authorize(ctx, callerName, authz.PermManageUsers); err != nil {
			return err
		}
	} else if _, err := s.d.Storage.Query.FindUserByName(ctx, callerName); err != nil {
		return apperrors.Forbidden(apperrors.CodePermissionDenied, "caller is not a recognized user")
	}
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.ValidationFailed(apperrors.CodeValidationFailed, "password must not be empty")
	}
	salt, hash, err := s.d.Passwords.CreateSaltAndHash(newPassword)
	if err != nil {
		return apperrors.Internal(apperrors.CodeValidationFailed, "hash password: "+err.Error())
	}
	_, err = s.append(ctx, callerName, domain.DomainEvent{
		Type:                domain.EventUserPasswordChanged,
		UserPasswordChanged: &domain.UserPasswordChanged{Name: targetName, Salt: salt, Hash: hash},
	})
	return err
}

// SetEmail changes target's email, subject to the same self-or-admin
// rule as SetPassword and the unique-email invariant.
func (s *Service) SetEmail(ctx context.Context, callerName, targetName, newEmail string) error {
	if callerName != targetName {
		if _, err := s.authorize(ctx, callerName, authz.PermManageUsers); err != nil {
			return err
		}
	}
	if err := validateName("email", newEmail); err != nil {
		return err
	}
	if existing, _ := s.d.Storage.Query.SearchUserByEmail(ctx, newEmail); existing != nil && existing.Name != targetName {
		return apperrors.Conflict(apperrors.CodeEmailExists, "email "+newEmail+" already registered")
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:             domain.EventUserEmailChanged,
		UserEmailChanged: &domain.UserEmailChanged{Name: targetName, Email: newEmail},
	})
	return err
}

// SetUserName renames a user and cascades the rename to every
// reference (owner, voter, ballot voter) that the storage backend
// carries the name inside (spec.md §9, Cascaded rename design note).
func (s *Service) SetUserName(ctx context.Context, callerName, oldName, newName string) error {
	if callerName != oldName {
		if _, err := s.authorize(ctx, callerName, authz.PermManageUsers); err != nil {
			return err
		}
	}
	if err := validateName("name", newName); err != nil {
		return err
	}
	if existing, _ := s.d.Storage.Query.FindUserByName(ctx, newName); existing != nil {
		return apperrors.Conflict(apperrors.CodeUserExists, "user "+newName+" already exists")
	}
	_, err := s.append(ctx, callerName, domain.DomainEvent{
		Type:            domain.EventUserNameChanged,
		UserNameChanged: &domain.UserNameChanged{OldName: oldName, NewName: newName},
	})
	return err
}

// RemoveUser deletes target and cascades to their owned elections and
// cast ballots (spec.md §4.2: UserRemoved).
func (s *Service) RemoveUser(ctx context.Context, callerName, targetName string) error {
	if _, err := s.authorize(ctx, callerName, authz.PermManageUsers); err != nil {
		return err
	}
	target, err := s.d.Storage.Query.FindUserByName(ctx, targetName)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		return apperrors.PreconditionFailed(apperrors.CodeLastOwner, "cannot remove the sole OWNER")
	}
	elections, err := s.d.Storage.Query.ListElections(ctx)
	if err != nil {
		return err
	}
	for _, e := range elections {
		if e.OwnerName == targetName {
			if _, err := s.append(ctx, callerName, domain.DomainEvent{
				Type:            domain.EventElectionDeleted,
				ElectionDeleted: &domain.ElectionDeleted{ElectionName: e.Name},
			}); err != nil {
				return err
			}
		}
	}
	_, err = s.append(ctx, callerName, domain.DomainEvent{
		Type:        domain.EventUserRemoved,
		UserRemoved: &domain.UserRemoved{Name: targetName},
	})
	if err == nil {
		s.d.Notify.Notify("user_removed", "user", targetName, callerName, nil)
	}
	return err
}

// GetUser returns the user identified by name, NotFound if absent.
func (s *Service) GetUser(ctx context.Context, name string) (*domain.User, error) {
	return s.d.Storage.Query.FindUserByName(ctx, name)
}

// ListUsers returns every registered user. Requires MANAGE_USERS.
func (s *Service) ListUsers(ctx context.Context, callerName string) ([]domain.User, error) {
	if _, err := s.authorize(ctx, callerName, authz.PermManageUsers); err != nil {
		return nil, err
	}
	return s.d.Storage.Query.ListUsers(ctx)
}

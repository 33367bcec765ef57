package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
)

// UserRoleFlow reads and assigns application roles
type UserRoleFlow interface {
	GetRole(ctx context.Context, userID string) (*dto.UserRoleResponse, error)
	SetRole(ctx context.Context, actor Actor, userID string, req *dto.UpdateUserRoleRequest, metadata *ClientMetadata) (*dto.UserRoleResponse, error)
	// ResolveRole is used by the auth middleware; it never fails
	ResolveRole(ctx context.Context, userID uuid.UUID, claimRole string) string
}

// UserRoleFlowImpl implements UserRoleFlow
type UserRoleFlowImpl struct {
	roleRepo repository.UserRoleRepository
	cache    services.KeyValueStore
	activity ActivityRecorder
}

func NewUserRoleFlow(roleRepo repository.UserRoleRepository, cache services.KeyValueStore, activity ActivityRecorder) UserRoleFlow {
	return &UserRoleFlowImpl{roleRepo: roleRepo, cache: cache, activity: activity}
}

func roleCacheKey(userID uuid.UUID) string {
	return "role:" + userID.String()
}

func defaultRole(userID uuid.UUID) *dto.UserRoleResponse {
	return &dto.UserRoleResponse{Role: dto.RoleDTO{UserID: userID, Role: models.RoleUser}}
}

func toRoleDTO(r *models.UserRole) dto.RoleDTO {
	return dto.RoleDTO{
		ID:        utils.ToPtr(r.ID),
		UserID:    r.UserID,
		Role:      r.Role,
		CreatedAt: utils.ToPtr(r.CreatedAt),
	}
}

// GetRole falls back to the default "user" role when the row is missing or unreadable
func (f *UserRoleFlowImpl) GetRole(ctx context.Context, userID string) (*dto.UserRoleResponse, error) {
	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return nil, validationError("Invalid user id")
	}

	role, err := f.roleRepo.ByUserID(ctx, id)
	if err != nil {
		requestLogger(ctx, "user_role").WithError(err).WithField("user_id", id).Warn("role lookup failed, using default")
		return defaultRole(id), nil
	}
	if role == nil {
		return defaultRole(id), nil
	}
	return &dto.UserRoleResponse{Role: toRoleDTO(role)}, nil
}

func (f *UserRoleFlowImpl) SetRole(ctx context.Context, actor Actor, userID string, req *dto.UpdateUserRoleRequest, metadata *ClientMetadata) (*dto.UserRoleResponse, error) {
	if !actor.IsAdmin() {
		return nil, NewBusinessError(CodeForbidden, "Insufficient permissions", ErrForbidden)
	}
	if !actor.HasAAL2() {
		return nil, NewBusinessError(CodeMFARequired, "Two-factor verification required", ErrForbidden)
	}

	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return nil, validationError("Invalid user id")
	}
	if !models.IsValidRole(req.Role) {
		return nil, validationError("Role must be admin or user")
	}

	role, err := f.roleRepo.Upsert(ctx, id, req.Role)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Del(ctx, roleCacheKey(id)); err != nil {
		requestLogger(ctx, "user_role").WithError(err).Warn("failed to invalidate role cache")
	}
	f.activity.Record(ctx, actor, models.ActivityRoleChanged, models.ObjectTypeUserRole, id.String(),
		map[string]any{"role": req.Role}, metadata)

	return &dto.UserRoleResponse{Role: toRoleDTO(role)}, nil
}

// ResolveRole prefers the user_roles row, then the token claim, then "user"
func (f *UserRoleFlowImpl) ResolveRole(ctx context.Context, userID uuid.UUID, claimRole string) string {
	fallback := models.RoleUser
	if models.IsValidRole(claimRole) {
		fallback = claimRole
	}

	key := roleCacheKey(userID)
	if cached, found, err := f.cache.Get(ctx, key); err == nil && found && models.IsValidRole(cached) {
		return cached
	}

	row, err := f.roleRepo.ByUserID(ctx, userID)
	if err != nil {
		requestLogger(ctx, "user_role").WithError(err).WithField("user_id", userID).Warn("role lookup failed, using claim")
		return fallback
	}

	role := fallback
	if row != nil && models.IsValidRole(row.Role) {
		role = row.Role
	}
	if err := f.cache.Set(ctx, key, role, utils.RoleCacheTTL); err != nil {
		requestLogger(ctx, "user_role").WithError(err).Debug("failed to cache role")
	}
	return role
}

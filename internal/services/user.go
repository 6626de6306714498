package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/modules/progress"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/pkg/period"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
	"github.com/yungbote/quidz-backend/internal/realtime"
)

// UserView is a profile with its raw roles and the derived view flags.
type UserView struct {
	*types.Profile
	Roles []string `json:"roles"`
	types.RoleSet
}

type UpdateProfileInput struct {
	FullName            *string `json:"full_name" validate:"omitempty,notblank,max=120"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
}

type ListUsersInput struct {
	Search string
	Limit  int
	Offset int
}

type ParticipantDetail struct {
	User     UserView         `json:"user"`
	Progress progress.Summary `json:"progress"`
}

type UserService interface {
	GetMe(ctx context.Context) (*UserView, error)
	ResolveRoles(ctx context.Context, userID uuid.UUID) (types.RoleSet, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*UserView, error)
	UploadAvatarImage(ctx context.Context, raw []byte) (*UserView, error)
	ListUsers(ctx context.Context, in ListUsersInput) ([]*UserView, error)
	GetParticipantDetail(ctx context.Context, userID uuid.UUID, p *period.Period) (*ParticipantDetail, error)
	SetRoles(ctx context.Context, userID uuid.UUID, roles []string) (*UserView, error)
}

type userService struct {
	db              *gorm.DB
	log             *logger.Logger
	profileRepo     repos.ProfileRepo
	roleRepo        repos.UserRoleRepo
	avatarService   AvatarService
	progressService ProgressService
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	roleRepo repos.UserRoleRepo,
	avatarService AvatarService,
	progressService ProgressService,
) UserService {
	return &userService{
		db:              db,
		log:             log.With("service", "UserService"),
		profileRepo:     profileRepo,
		roleRepo:        roleRepo,
		avatarService:   avatarService,
		progressService: progressService,
	}
}

func (us *userService) GetMe(ctx context.Context) (*UserView, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return us.view(dbctx.Context{Ctx: ctx}, c.ID)
}

// ResolveRoles is the role-gated view selection: is_admin only with an admin
// row, staff for admin or coach.
func (us *userService) ResolveRoles(ctx context.Context, userID uuid.UUID) (types.RoleSet, error) {
	roles, err := us.roleRepo.GetRoles(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return types.RoleSet{}, err
	}
	return user.ResolveRoles(roles), nil
}

func (us *userService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*UserView, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		trimmed := strings.TrimSpace(*in.FullName)
		in.FullName = &trimmed
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.OnboardingCompleted != nil {
		updates["onboarding_completed"] = *in.OnboardingCompleted
	}
	if len(updates) == 0 {
		return nil, apierr.BadRequest("no_changes", fmt.Errorf("no profile updates provided"))
	}

	var out *UserView
	if err := inTx(us.db, ctx, func(dbc dbctx.Context) error {
		if err := us.profileRepo.UpdateFields(dbc, c.ID, updates); err != nil {
			return err
		}
		out, err = us.view(dbc, c.ID)
		return err
	}); err != nil {
		return nil, err
	}

	if in.FullName != nil {
		payload := map[string]any{"user_id": c.ID, "full_name": out.FullName}
		emit(ctx,
			realtime.SSEMessage{Channel: userChannel(c.ID), Event: realtime.SSEEventUserNameChanged, Data: payload},
			realtime.SSEMessage{Channel: realtime.StaffChannel, Event: realtime.SSEEventUserNameChanged, Data: payload},
		)
	}
	return out, nil
}

func (us *userService) UploadAvatarImage(ctx context.Context, raw []byte) (*UserView, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apierr.BadRequest("empty_file", fmt.Errorf("file required"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := us.profileRepo.GetByID(dbc, c.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apierr.NotFound("user_not_found")
	}
	if err := us.avatarService.CreateAndUploadUserAvatarFromImage(ctx, profile, raw); err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return nil, err
		}
		return nil, apierr.BadRequest("invalid_image", err)
	}
	if err := us.profileRepo.UpdateAvatarFields(dbc, c.ID, profile.AvatarBucketKey, profile.AvatarURL); err != nil {
		return nil, err
	}

	payload := map[string]any{"user_id": c.ID, "avatar_url": profile.AvatarURL}
	emit(ctx,
		realtime.SSEMessage{Channel: userChannel(c.ID), Event: realtime.SSEEventUserAvatarUpdated, Data: payload},
		realtime.SSEMessage{Channel: realtime.StaffChannel, Event: realtime.SSEEventUserAvatarUpdated, Data: payload},
	)
	return us.view(dbc, c.ID)
}

// ListUsers is staff only. Coaches see participants only; admins see everyone.
func (us *userService) ListUsers(ctx context.Context, in ListUsersInput) ([]*UserView, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	profiles, err := us.profileRepo.List(dbc, repos.ProfileFilter{
		ParticipantsOnly: !c.Roles.IsAdmin,
		Search:           strings.TrimSpace(in.Search),
		Limit:            in.Limit,
		Offset:           in.Offset,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	roleMap, err := us.roleRepo.GetByUserIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*UserView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newUserView(p, roleMap[p.ID]))
	}
	return out, nil
}

func (us *userService) GetParticipantDetail(ctx context.Context, userID uuid.UUID, p *period.Period) (*ParticipantDetail, error) {
	c, err := staffFrom(ctx)
	if err != nil {
		return nil, err
	}
	v, err := us.view(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	if !c.Roles.IsAdmin && v.IsStaff {
		return nil, apierr.NotFound("user_not_found")
	}
	sum, err := us.progressService.Compute(ctx, &userID, p)
	if err != nil {
		return nil, err
	}
	return &ParticipantDetail{User: *v, Progress: sum}, nil
}

// SetRoles replaces the role rows of userID. Admin only; an admin cannot drop
// their own admin role.
func (us *userService) SetRoles(ctx context.Context, userID uuid.UUID, roles []string) (*UserView, error) {
	c, err := adminFrom(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	clean := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if !user.IsValidRole(r) {
			return nil, apierr.BadRequest("invalid_role", fmt.Errorf("unknown role %q", r))
		}
		if !seen[r] {
			seen[r] = true
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return nil, apierr.BadRequest("invalid_role", fmt.Errorf("at least one role required"))
	}
	if userID == c.ID && !seen[user.RoleAdmin] {
		return nil, apierr.Conflict("cannot_demote_self", nil)
	}
	sort.Strings(clean)

	var out *UserView
	if err := inTx(us.db, ctx, func(dbc dbctx.Context) error {
		profile, err := us.profileRepo.GetByID(dbc, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			return apierr.NotFound("user_not_found")
		}
		if err := us.roleRepo.Replace(dbc, userID, clean); err != nil {
			return err
		}
		out, err = us.view(dbc, userID)
		return err
	}); err != nil {
		return nil, err
	}

	us.log.Info("Roles replaced", "user_id", userID, "roles", clean, "by", c.ID)
	payload := map[string]any{"user_id": userID, "roles": out.Roles, "is_admin": out.IsAdmin, "is_staff": out.IsStaff}
	emit(ctx,
		realtime.SSEMessage{Channel: userChannel(userID), Event: realtime.SSEEventUserRoleChanged, Data: payload},
		realtime.SSEMessage{Channel: realtime.StaffChannel, Event: realtime.SSEEventUserRoleChanged, Data: payload},
	)
	return out, nil
}

func (us *userService) view(dbc dbctx.Context, userID uuid.UUID) (*UserView, error) {
	profile, err := us.profileRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if profile == nil {
		return nil, apierr.NotFound("user_not_found")
	}
	roles, err := us.roleRepo.GetRoles(dbc, userID)
	if err != nil {
		return nil, err
	}
	return newUserView(profile, roles), nil
}

func newUserView(p *types.Profile, roles []string) *UserView {
	if roles == nil {
		roles = []string{}
	}
	return &UserView{Profile: p, Roles: roles, RoleSet: user.ResolveRoles(roles)}
}

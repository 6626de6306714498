package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/data/repos"
	types "github.com/yungbote/quidz-backend/internal/domain"
	"github.com/yungbote/quidz-backend/internal/domain/user"
	"github.com/yungbote/quidz-backend/internal/pkg/ctxutil"
	"github.com/yungbote/quidz-backend/internal/pkg/dbctx"
	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/apierr"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"notblank,max=120"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.Profile, error)
	LoginUser(ctx context.Context, in LoginInput) (*AuthTokens, error)
	RefreshUser(ctx context.Context, refreshToken string) (*AuthTokens, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	profileRepo   repos.ProfileRepo
	roleRepo      repos.UserRoleRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

var (
	errInvalidCredentials = apierr.Unauthorized("invalid_credentials")
	errInvalidToken       = apierr.Unauthorized("invalid_token")
	errRefreshExpired     = apierr.Unauthorized("refresh_expired")
)

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	roleRepo repos.UserRoleRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		profileRepo:   profileRepo,
		roleRepo:      roleRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

// RegisterUser creates the profile with role user and an initials avatar. A
// failed avatar upload does not block registration.
func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.Profile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := checkInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := nowUTC()
	profile := &types.Profile{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if as.avatarService != nil {
		if err := as.avatarService.CreateAndUploadUserAvatar(ctx, profile); err != nil {
			as.log.Warn("avatar generation failed; continuing without avatar", "user_id", profile.ID, "error", err)
		}
	}

	err = inTx(as.db, ctx, func(dbc dbctx.Context) error {
		exists, err := as.profileRepo.EmailExists(dbc, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return apierr.Conflict("email_taken", nil)
		}
		if _, err := as.profileRepo.Create(dbc, []*types.Profile{profile}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("email_taken", nil)
			}
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return as.roleRepo.Grant(dbc, profile.ID, user.RoleUser)
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", profile.ID)
	return profile, nil
}

func (as *authService) LoginUser(ctx context.Context, in LoginInput) (*AuthTokens, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := checkInput(in); err != nil {
		return nil, err
	}

	var out *AuthTokens
	err := inTx(as.db, ctx, func(dbc dbctx.Context) error {
		profile, err := as.profileRepo.GetByEmail(dbc, in.Email)
		if err != nil {
			return fmt.Errorf("error retrieving user by email: %w", err)
		}
		if profile == nil {
			return errInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.Password)); err != nil {
			return errInvalidCredentials
		}
		out, err = as.issueTokens(dbc, profile.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RefreshUser rotates a session: the old token row is removed and a new
// access/refresh pair is issued.
func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.BadRequest("missing_refresh_token", errors.New("refresh_token required"))
	}

	var (
		out     *AuthTokens
		expired bool
	)
	err := inTx(as.db, ctx, func(dbc dbctx.Context) error {
		existing, err := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return fmt.Errorf("error fetching refresh token: %w", err)
		}
		if existing == nil {
			return errInvalidToken
		}
		if existing.ExpiresAt.Before(nowUTC()) {
			expired = true
			return as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID})
		}
		profile, err := as.profileRepo.GetByID(dbc, existing.UserID)
		if err != nil {
			return fmt.Errorf("failed to load user for refresh: %w", err)
		}
		if profile == nil {
			return errInvalidToken
		}
		if out, err = as.issueTokens(dbc, profile.ID); err != nil {
			return err
		}
		return as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID})
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, errRefreshExpired
	}
	return out, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return errUnauthorized
	}
	return inTx(as.db, ctx, func(dbc dbctx.Context) error {
		tok, err := as.userTokenRepo.GetByAccessToken(dbc, rd.TokenString)
		if err != nil {
			return fmt.Errorf("error finding user token: %w", err)
		}
		if tok == nil {
			return nil
		}
		return as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{tok.ID})
	})
}

// SetContextFromToken validates the JWT, checks that its session still exists
// and attaches the caller's identity and roles to ctx.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, errInvalidToken
	}
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, errInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, errInvalidToken
	}

	dbc := dbctx.Context{Ctx: ctx}
	tok, err := as.userTokenRepo.GetByAccessToken(dbc, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("failed to load session: %w", err)
	}
	if tok == nil || tok.UserID != userID {
		return ctx, errInvalidToken
	}
	roles, err := as.roleRepo.GetRoles(dbc, userID)
	if err != nil {
		return ctx, fmt.Errorf("failed to load roles: %w", err)
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: tok.RefreshToken,
		UserID:       userID,
		SessionID:    tok.ID,
		Roles:        user.ResolveRoles(roles),
	}), nil
}

func (as *authService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := as.userTokenRepo.FullDeleteExpired(dbctx.Context{Ctx: ctx}, nowUTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		as.log.Info("Purged expired sessions", "count", n)
	}
	return n, nil
}

func (as *authService) issueTokens(dbc dbctx.Context, userID uuid.UUID) (*AuthTokens, error) {
	access, err := as.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generate access token error: %w", err)
	}
	now := nowUTC()
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    now.Add(as.refreshTTL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		return nil, fmt.Errorf("create user token error: %w", err)
	}
	return &AuthTokens{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) generateAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

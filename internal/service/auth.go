package service

import (
	"context"
	"log/slog"

	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

// OAuthProvider exchanges an authorization code for the user's identity.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.Principal, error)
}

// AuthService handles Discord login and the profile endpoint.
type AuthService struct {
	db       repository.DBTX
	roles    repository.RoleRepository
	oauth    OAuthProvider
	sync     *RoleSyncService
	resolver *auth.Resolver
	jwtMgr   *auth.JWTManager
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService. oauth may be nil when login is not configured.
func NewAuthService(
	db repository.DBTX,
	roles repository.RoleRepository,
	oauth OAuthProvider,
	sync *RoleSyncService,
	resolver *auth.Resolver,
	jwtMgr *auth.JWTManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		roles:    roles,
		oauth:    oauth,
		sync:     sync,
		resolver: resolver,
		jwtMgr:   jwtMgr,
		logger:   logger,
	}
}

// LoginResult is returned on a successful Discord login.
type LoginResult struct {
	Token           string                 `json:"token"`
	Principal       domain.Principal       `json:"principal"`
	PermissionLevel domain.PermissionLevel `json:"permission_level"`
}

// Profile describes the signed-in user.
type Profile struct {
	Principal       domain.Principal       `json:"principal"`
	PermissionLevel domain.PermissionLevel `json:"permission_level"`
	RoleIDs         []string               `json:"role_ids"`
}

// LoginURL returns Discord's authorize URL for the given state.
func (s *AuthService) LoginURL(state string) (string, error) {
	if s.oauth == nil {
		return "", domain.ErrUnavailable("discord login is not configured")
	}
	return s.oauth.AuthCodeURL(state), nil
}

// Callback completes the login: exchange, best-effort role sync, token issue.
func (s *AuthService) Callback(ctx context.Context, code string) (*LoginResult, error) {
	if s.oauth == nil {
		return nil, domain.ErrUnavailable("discord login is not configured")
	}
	if code == "" {
		return nil, domain.ErrValidation("code is required")
	}

	p, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, wrapErr("discord login", err)
	}
	if p.DiscordID == "" {
		return nil, domain.ErrUnauthorized("discord account has no id")
	}

	if s.sync != nil {
		if _, err := s.sync.SyncUserRoles(ctx, p.DiscordID); err != nil {
			s.logger.Warn("role sync at login failed", "discord_id", p.DiscordID, "error", err)
		}
	}

	token, err := s.jwtMgr.GenerateToken(p)
	if err != nil {
		return nil, domain.ErrInternal("issue token", err)
	}
	level := s.resolver.Resolve(ctx, p)

	s.logger.Info("user logged in", "discord_id", p.DiscordID, "level", level)
	return &LoginResult{Token: token, Principal: p, PermissionLevel: level}, nil
}

// Me returns the principal with its resolved level and cached Discord roles.
func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*Profile, error) {
	prof := &Profile{
		Principal:       p,
		PermissionLevel: s.resolver.Resolve(ctx, p),
		RoleIDs:         []string{},
	}
	if p.DiscordID == "" {
		return prof, nil
	}
	ids, err := s.roles.UserRoleIDs(ctx, s.db, p.DiscordID)
	if err != nil {
		return nil, domain.ErrInternal("user roles", err)
	}
	prof.RoleIDs = ids
	return prof, nil
}

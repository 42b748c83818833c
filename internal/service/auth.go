package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_manager/internal/events"
	"github.com/Skotchmaster/store_manager/internal/hash"
	"github.com/Skotchmaster/store_manager/internal/logging"
	"github.com/Skotchmaster/store_manager/internal/models"
	"github.com/Skotchmaster/store_manager/internal/repo"
	"github.com/Skotchmaster/store_manager/internal/tokens"
	"github.com/Skotchmaster/store_manager/internal/transport"
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	AccessTTL time.Duration
	Events    events.Publisher
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	User        *models.User
}

// Register creates an account. Self-registration as admin is only allowed
// while the store has no admin; later admins are created by an admin.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	var user *models.User
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if role, err := validRole(req.Role); err == nil && role == models.RoleAdmin {
			if err := tx.LockAdminBootstrap(ctx); err != nil {
				return fmt.Errorf("lock admin bootstrap: %w", err)
			}
			exists, err := tx.AdminExists(ctx)
			if err != nil {
				return fmt.Errorf("check admin: %w", err)
			}
			if exists {
				return newError(ErrForbidden, "an admin account already exists")
			}
		}

		var err error
		user, err = createUser(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), events.UserRegistered{
		Type:     events.TypeUserRegistered,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	l.Info("register_success", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	username := NormalizeName(req.Username)
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || req.Password == "" {
		return nil, newError(ErrValidation, "username and password are required")
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown username")
			return nil, newError(ErrUnauthorized, "invalid username or password")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, newError(ErrUnauthorized, "invalid username or password")
	}

	exp := time.Now().Add(s.AccessTTL)
	token, _, err := tokens.CreateAccessToken(s.JWTSecret, user.ID, user.Role, exp)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{AccessToken: token, AccessExp: exp, User: user}, nil
}

// Authenticate turns already verified token claims into a principal. A token
// on the denylist or one whose user is gone is rejected.
func (s *AuthService) Authenticate(ctx context.Context, claims *tokens.AccessClaims) (*Principal, error) {
	if claims.ID == "" {
		return nil, newError(ErrUnauthorized, "token has no id")
	}

	revoked, err := s.Repo.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return nil, newError(ErrUnauthorized, "token has been revoked")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, newError(ErrUnauthorized, "invalid token subject")
	}
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, "user no longer exists")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &Principal{UserID: user.ID, Role: user.Role, TokenID: claims.ID}, nil
}

// Logout puts the caller's token on the denylist.
func (s *AuthService) Logout(ctx context.Context, p Principal) error {
	if p.TokenID == "" {
		return newError(ErrValidation, "token id is required")
	}
	if err := s.Repo.RevokeToken(ctx, p.TokenID); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	logging.FromContext(ctx).Info("logout_success", "svc", "auth.logout", "user_id", p.UserID)
	return nil
}

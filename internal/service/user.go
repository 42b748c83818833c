package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_manager/internal/hash"
	"github.com/Skotchmaster/store_manager/internal/logging"
	"github.com/Skotchmaster/store_manager/internal/models"
	"github.com/Skotchmaster/store_manager/internal/repo"
	"github.com/Skotchmaster/store_manager/internal/transport"
)

// Principal is the authenticated caller. Role is the stored role, not the
// one carried in the token.
type Principal struct {
	UserID  uint
	Role    string
	TokenID string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

func validRole(role string) (string, error) {
	r := NormalizeName(role)
	if r != models.RoleAdmin && r != models.RoleAttendant {
		return "", newError(ErrValidation, "user role must be either admin or attendant")
	}
	return r, nil
}

func validPassword(password string) error {
	if password == "" {
		return newError(ErrValidation, "password cannot be empty")
	}
	if len(password) < 6 {
		return newError(ErrValidation, "password must be at least 6 characters")
	}
	return nil
}

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) CreateUser(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	return createUser(ctx, s.Repo, req)
}

func createUser(ctx context.Context, r *repo.GormRepo, req transport.RegisterRequest) (*models.User, error) {
	username, err := validName("username", req.Username)
	if err != nil {
		return nil, err
	}
	if err := validPassword(req.Password); err != nil {
		return nil, err
	}
	role, err := validRole(req.Role)
	if err != nil {
		return nil, err
	}

	if err := usernameFree(ctx, r, username, 0); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: pwHash, Role: role}
	if err := r.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(ErrConflict, "user already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func usernameFree(ctx context.Context, r *repo.GormRepo, username string, selfID uint) error {
	existing, err := r.FindUserByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != selfID:
		return newError(ErrConflict, "user already exists")
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("find user: %w", err)
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "user with id %d does not exist", id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	total, items, err := s.Repo.ListUsers(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list users: %w", err)
	}
	return total, items, nil
}

// UpdateUser applies a partial update. The last admin cannot be demoted, since
// an admin-less store reopens public admin registration.
func (s *UserService) UpdateUser(ctx context.Context, id uint, req transport.UpdateUserRequest) (*models.User, error) {
	var user *models.User
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		user, err = updateUser(ctx, tx, id, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func updateUser(ctx context.Context, tx *repo.GormRepo, id uint, req transport.UpdateUserRequest) (*models.User, error) {
	user, err := tx.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "user with id %d does not exist", id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if req.Username != nil {
		username, err := validName("username", *req.Username)
		if err != nil {
			return nil, err
		}
		if err := usernameFree(ctx, tx, username, id); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if req.Password != nil {
		if err := validPassword(*req.Password); err != nil {
			return nil, err
		}
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = pwHash
	}
	if req.Role != nil {
		role, err := validRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if user.Role == models.RoleAdmin && role != models.RoleAdmin {
			if err := tx.LockAdminBootstrap(ctx); err != nil {
				return nil, fmt.Errorf("lock admin bootstrap: %w", err)
			}
			admins, err := tx.CountAdmins(ctx)
			if err != nil {
				return nil, fmt.Errorf("count admins: %w", err)
			}
			if admins <= 1 {
				return nil, newError(ErrConflict, "cannot demote the last admin")
			}
		}
		user.Role = role
	}

	if err := tx.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(ErrConflict, "user already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account. Accounts that recorded sales are kept so the
// sale history still resolves its attendant.
func (s *UserService) DeleteUser(ctx context.Context, id uint, actor Principal) error {
	if id == actor.UserID {
		return newError(ErrConflict, "you cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	n, err := s.Repo.CountSalesByAttendant(ctx, id)
	if err != nil {
		return fmt.Errorf("count sales: %w", err)
	}
	if n > 0 {
		return newError(ErrConflict, "user has %d recorded sales and cannot be deleted", n)
	}

	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, "user with id %d does not exist", id)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account unless an admin already
// exists.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "user.ensure_admin")

	var user *models.User
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.LockAdminBootstrap(ctx); err != nil {
			return fmt.Errorf("lock admin bootstrap: %w", err)
		}
		exists, err := tx.AdminExists(ctx)
		if err != nil {
			return fmt.Errorf("check admin: %w", err)
		}
		if exists {
			return nil
		}

		user, err = createUser(ctx, tx, transport.RegisterRequest{
			Username: username,
			Password: password,
			Role:     models.RoleAdmin,
		})
		return err
	})
	if err != nil {
		return err
	}
	if user == nil {
		l.Debug("ensure_admin_skipped", "reason", "admin exists")
		return nil
	}
	l.Info("ensure_admin_created", "user_id", user.ID, "username", user.Username)
	return nil
}

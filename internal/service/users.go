package service

import (
	"fmt"
	"log/slog"

	"github.com/pliu/messenger/internal/auth"
	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

type UserService struct {
	store  store.Store
	hasher auth.PasswordHasher
}

// Register creates a user. Email is checked before name, so a request
// clashing on both reports the email.
func (s *UserService) Register(name, email, rawPassword string) (*models.User, error) {
	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	err = s.store.WithTx(func(tx store.Store) error {
		_, err := tx.GetUserByEmail(email)
		if exists, err := found(err); err != nil {
			return storeError(err, "look up email %q", email)
		} else if exists {
			return fmt.Errorf("%w: email %q is already registered", ErrConflict, email)
		}

		_, err = tx.GetUserByName(name)
		if exists, err := found(err); err != nil {
			return storeError(err, "look up name %q", name)
		} else if exists {
			return fmt.Errorf("%w: name %q is already taken", ErrConflict, name)
		}

		if err := tx.CreateUser(user); err != nil {
			return storeError(err, "create user %q", name)
		}
		return nil
	})
	if err != nil {
		slog.Warn("service: Registration rejected", "name", name, "error", err)
		return nil, err
	}

	slog.Info("service: User registered", "user_id", user.ID, "name", name)
	return user, nil
}

func (s *UserService) VerifyLogin(email, rawPassword string) (*models.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		return nil, fmt.Errorf("%w: wrong password for %q", ErrUnauthorized, email)
	}
	return user, nil
}

func (s *UserService) GetByID(id int64) (*models.User, error) {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		return nil, storeError(err, "user %d", id)
	}
	return user, nil
}

func (s *UserService) GetByName(name string) (*models.User, error) {
	user, err := s.store.GetUserByName(name)
	if err != nil {
		return nil, storeError(err, "user %q", name)
	}
	return user, nil
}

func (s *UserService) GetByEmail(email string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return nil, storeError(err, "user with email %q", email)
	}
	return user, nil
}

func (s *UserService) List() ([]models.User, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, storeError(err, "list users")
	}
	return users, nil
}

// UpdateName renames a user. Keeping the current name is not a conflict.
func (s *UserService) UpdateName(id int64, name string) (*models.User, error) {
	return s.update(id, func(tx store.Store, user *models.User) error {
		other, err := tx.GetUserByName(name)
		if exists, err := found(err); err != nil {
			return storeError(err, "look up name %q", name)
		} else if exists && other.ID != id {
			return fmt.Errorf("%w: name %q is already taken", ErrConflict, name)
		}
		user.Name = name
		return nil
	})
}

// UpdateEmail changes a user's email. Keeping the current email is not a
// conflict.
func (s *UserService) UpdateEmail(id int64, email string) (*models.User, error) {
	return s.update(id, func(tx store.Store, user *models.User) error {
		other, err := tx.GetUserByEmail(email)
		if exists, err := found(err); err != nil {
			return storeError(err, "look up email %q", email)
		} else if exists && other.ID != id {
			return fmt.Errorf("%w: email %q is already registered", ErrConflict, email)
		}
		user.Email = email
		return nil
	})
}

// UpdatePassword re-hashes and stores newRaw. When oldRaw is non-nil it must
// match the current password.
func (s *UserService) UpdatePassword(id int64, oldRaw *string, newRaw string) error {
	hash, err := s.hasher.Hash(newRaw)
	if err != nil {
		return err
	}
	_, err = s.update(id, func(_ store.Store, user *models.User) error {
		if oldRaw != nil && !s.hasher.Verify(*oldRaw, user.PasswordHash) {
			return fmt.Errorf("%w: current password does not match for user %d", ErrUnauthorized, id)
		}
		user.PasswordHash = hash
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("service: Password changed", "user_id", id, "verified", oldRaw != nil)
	return nil
}

// UpdateAvatar replaces the avatar; nil clears it.
func (s *UserService) UpdateAvatar(id int64, image []byte) (*models.User, error) {
	return s.update(id, func(_ store.Store, user *models.User) error {
		user.Image = image
		return nil
	})
}

// Delete removes the user row only. Chats, memberships and bookmarks that
// reference the user are left in place.
func (s *UserService) Delete(id int64) error {
	if err := s.store.DeleteUser(id); err != nil {
		return storeError(err, "delete user %d", id)
	}
	slog.Info("service: User deleted", "user_id", id)
	return nil
}

// update loads the user, lets mutate change it and writes it back in one
// transaction.
func (s *UserService) update(id int64, mutate func(tx store.Store, user *models.User) error) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(func(tx store.Store) error {
		var err error
		if user, err = tx.GetUserByID(id); err != nil {
			return storeError(err, "user %d", id)
		}
		if err := mutate(tx, user); err != nil {
			return err
		}
		if err := tx.UpdateUser(user); err != nil {
			return storeError(err, "update user %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

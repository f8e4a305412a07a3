package application

import (
	"context"
	"errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/marketbay/user-service/internal/domain/entity"
	repo "github.com/marketbay/user-service/internal/domain/repository"
)

// UserService covers role policy and profile reads. It operates purely on
// the repository; hashing, signing and notification are not involved.
type UserService struct {
	Repo         repo.UserRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(r repo.UserRepository, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{Repo: r, Logger: logger, ES: es, ESUsersIndex: esUsersIndex}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ApplyForSeller is self-service: any existing user may take the seller
// role. Holding it already is a no-op with no storage write.
func (s *UserService) ApplyForSeller(ctx context.Context, userID string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.HasRole(entity.RoleSeller) {
		return nil
	}
	added, err := s.Repo.AddRole(ctx, u.ID, entity.RoleSeller)
	if err != nil {
		return err
	}
	if added {
		u.AddRole(entity.RoleSeller)
		s.indexUser(ctx, u)
	}
	return nil
}

// PromoteToAdmin grants the admin role to the target. Only an existing admin
// may perform the promotion; granting to an admin is a no-op.
func (s *UserService) PromoteToAdmin(ctx context.Context, targetUserID, requesterID string) error {
	requester, err := s.Repo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if !requester.HasRole(entity.RoleAdmin) {
		return ErrUnauthorized
	}

	target, err := s.Repo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if target.HasRole(entity.RoleAdmin) {
		return nil
	}
	added, err := s.Repo.AddRole(ctx, target.ID, entity.RoleAdmin)
	if err != nil {
		return err
	}
	if added {
		target.AddRole(entity.RoleAdmin)
		s.indexUser(ctx, target)
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"target": target.ID, "requester": requester.ID}).Info("user promoted to admin")
		}
	}
	return nil
}

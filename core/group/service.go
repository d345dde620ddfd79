package group

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("group not found")
)

type (
	Repository interface {
		// QueryGroups returns all groups ordered by name.
		QueryGroups(ctx context.Context) ([]Group, error)
		GetGroup(ctx context.Context, id int) (Group, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Group, error) {
	groups, err := svc.repo.QueryGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return groups, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Group, error) {
	if id <= 0 {
		return Group{}, ErrNotFound
	}
	grp, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Group{}, ErrNotFound
		}
		return Group{}, errors.Wrap(err, "getting group")
	}
	return grp, nil
}

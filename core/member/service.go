package member

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("member not found")
)

type (
	Repository interface {
		CreateMember(ctx context.Context, mem Member) (Member, error)
		// QueryMembers returns all members ordered by name.
		QueryMembers(ctx context.Context) ([]Member, error)
		// QueryMembersByGroup returns the members of a group ordered by name.
		QueryMembersByGroup(ctx context.Context, groupID int) ([]Member, error)
		GetMember(ctx context.Context, id int) (Member, error)
		UpdateMember(ctx context.Context, mem Member) (Member, error)
		SetMemberActive(ctx context.Context, id int, active bool) (Member, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Create validates `nm` locally, then creates the member. Nothing reaches the gateway if validation fails.
func (svc *Service) Create(ctx context.Context, nm NewMember) (Member, error) {
	if err := nm.Validate(svc.validate); err != nil {
		return Member{}, err
	}
	mem := Member{
		Name:      nm.Name,
		Gender:    nm.Gender,
		GroupID:   nm.GroupID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	mem, err := svc.repo.CreateMember(ctx, mem)
	if err != nil {
		return Member{}, errors.Wrap(err, "creating member")
	}
	return mem, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Member, error) {
	members, err := svc.repo.QueryMembers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	return members, nil
}

func (svc *Service) QueryByGroup(ctx context.Context, groupID int) ([]Member, error) {
	members, err := svc.repo.QueryMembersByGroup(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying group members")
	}
	return members, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Member, error) {
	if id <= 0 {
		return Member{}, ErrNotFound
	}
	mem, err := svc.repo.GetMember(ctx, id)
	return mem, trapNotFound(err, "getting member")
}

func (svc *Service) Update(ctx context.Context, id int, um UpdateMember) (Member, error) {
	if err := um.Validate(svc.validate); err != nil {
		return Member{}, err
	}
	if id <= 0 {
		return Member{}, ErrNotFound
	}
	mem, err := svc.repo.UpdateMember(ctx, Member{
		ID:      id,
		Name:    um.Name,
		Gender:  um.Gender,
		GroupID: um.GroupID,
	})
	return mem, trapNotFound(err, "updating member")
}

// SetActive deactivates or reactivates a member. Inactive members are kept for history.
func (svc *Service) SetActive(ctx context.Context, id int, active bool) (Member, error) {
	if id <= 0 {
		return Member{}, ErrNotFound
	}
	mem, err := svc.repo.SetMemberActive(ctx, id, active)
	return mem, trapNotFound(err, "setting member active")
}

func trapNotFound(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == ErrNotFound {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

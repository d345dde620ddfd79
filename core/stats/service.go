package stats

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
)

var (
	// errors
	ErrUnknownRange = errors.New("unknown time range")
	ErrInvalidRange = errors.New("start date must not be after end date")
)

type (
	Repository interface {
		// DashboardStats aggregates the attendance of [start, end] by group category and gender.
		DashboardStats(ctx context.Context, start, end core.Date) (DashboardStats, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Dashboard(ctx context.Context, start, end core.Date) (DashboardStats, error) {
	if start.After(end) {
		return DashboardStats{}, core.NewFieldError("start", ErrInvalidRange)
	}
	st, err := svc.repo.DashboardStats(ctx, start, end)
	if err != nil {
		return DashboardStats{}, errors.Wrap(err, "querying dashboard stats")
	}
	if st.Timeline == nil {
		st.Timeline = []TimelinePoint{}
	}
	return st, nil
}

// TimeRange resolves a named range ending today.
func TimeRange(name string, today core.Date) (start, end core.Date, err error) {
	switch name {
	case RangeToday:
		return today, today, nil
	case RangeLast2Weeks:
		return today.AddDays(-14), today, nil
	case RangeLastMonth, "":
		return today.AddDays(-30), today, nil
	default:
		return core.Date{}, core.Date{}, core.NewFieldError("range", ErrUnknownRange)
	}
}

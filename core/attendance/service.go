package attendance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
)

var (
	// errors
	ErrNotInRoster    = errors.New("member not in roster")
	ErrSaveInProgress = errors.New("attendance save already in progress")
	ErrNoRoster       = errors.New("no roster loaded")
	ErrSuperseded     = errors.New("roster load superseded by a newer request")
	ErrInvalidRange   = errors.New("start date must not be after end date")
)

type (
	Repository interface {
		// QueryRecords returns the records of exactly (date, groupID).
		QueryRecords(ctx context.Context, date core.Date, groupID int) ([]Record, error)
		// BulkTake replaces the records of (date, group) with the given members, idempotently.
		BulkTake(ctx context.Context, bt BulkTake) error
		Report(ctx context.Context, q ReportQuery) ([]ReportItem, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryRecords(ctx context.Context, date core.Date, groupID int) ([]Record, error) {
	records, err := svc.repo.QueryRecords(ctx, date, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	return records, nil
}

func (svc *Service) BulkTake(ctx context.Context, bt BulkTake) error {
	if bt.MemberIDs == nil {
		bt.MemberIDs = []int{}
	}
	return errors.Wrap(svc.repo.BulkTake(ctx, bt), "taking attendance")
}

// Report returns the attendance report for [start, end], optionally restricted to one group.
func (svc *Service) Report(ctx context.Context, q ReportQuery) ([]ReportItem, error) {
	if q.Start.After(q.End) {
		return nil, core.NewFieldError("start", ErrInvalidRange)
	}
	if q.GroupID != nil && *q.GroupID <= 0 {
		q.GroupID = nil
	}
	items, err := svc.repo.Report(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance report")
	}
	return items, nil
}

// DefaultReportRange is one month ago to today.
func DefaultReportRange(today core.Date) (start, end core.Date) {
	return today.AddMonths(-1), today
}

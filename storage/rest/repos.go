package restgw

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/session"
	"github.com/ministerio-jovenes/asistencia/core/stats"
)

var (
	returnRepresentation = map[string]string{"Prefer": "return=representation"}

	groupOrdering  = []core.DBOrdering{{Field: "name", Ascending: true}}
	memberOrdering = []core.DBOrdering{{Field: "name", Ascending: true}, {Field: "id", Ascending: true}}
)

type groupRepository struct {
	c *Client
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(c *Client) *groupRepository {
	return &groupRepository{c: c}
}

func (repo *groupRepository) QueryGroups(ctx context.Context) ([]group.Group, error) {
	groups := []group.Group{}
	err := repo.c.do(ctx, call{
		method: rest.Get,
		path:   restPrefix + "/groups",
		query:  map[string]string{"select": "*", "order": order(groupOrdering)},
	}, &groups)
	return groups, errors.Wrap(err, "selecting groups")
}

func (repo *groupRepository) GetGroup(ctx context.Context, id int) (group.Group, error) {
	var groups []group.Group
	err := repo.c.do(ctx, call{
		method: rest.Get,
		path:   restPrefix + "/groups",
		query:  map[string]string{"select": "*", "id": eq(id)},
	}, &groups)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "selecting group")
	}
	if len(groups) == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return groups[0], nil
}

type memberRepository struct {
	c *Client
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(c *Client) *memberRepository {
	return &memberRepository{c: c}
}

type memberBody struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	GroupID  int    `json:"group_id"`
	IsActive bool   `json:"is_active"`
}

func (repo *memberRepository) selectMembers(ctx context.Context, filters map[string]string) ([]member.Member, error) {
	query := map[string]string{"select": "*", "order": order(memberOrdering)}
	for k, v := range filters {
		query[k] = v
	}
	members := []member.Member{}
	err := repo.c.do(ctx, call{method: rest.Get, path: restPrefix + "/members", query: query}, &members)
	return members, errors.Wrap(err, "selecting members")
}

// single returns the only member of a representation, or ErrNotFound.
func single(members []member.Member, err error, msg string) (member.Member, error) {
	if err != nil {
		return member.Member{}, errors.Wrap(err, msg)
	}
	if len(members) == 0 {
		return member.Member{}, member.ErrNotFound
	}
	return members[0], nil
}

func (repo *memberRepository) CreateMember(ctx context.Context, mem member.Member) (member.Member, error) {
	var members []member.Member
	err := repo.c.do(ctx, call{
		method:  rest.Post,
		path:    restPrefix + "/members",
		headers: returnRepresentation,
		body:    memberBody{Name: mem.Name, Gender: mem.Gender, GroupID: mem.GroupID, IsActive: mem.IsActive},
	}, &members)
	return single(members, err, "inserting member")
}

func (repo *memberRepository) QueryMembers(ctx context.Context) ([]member.Member, error) {
	return repo.selectMembers(ctx, nil)
}

func (repo *memberRepository) QueryMembersByGroup(ctx context.Context, groupID int) ([]member.Member, error) {
	return repo.selectMembers(ctx, map[string]string{"group_id": eq(groupID)})
}

func (repo *memberRepository) GetMember(ctx context.Context, id int) (member.Member, error) {
	members, err := repo.selectMembers(ctx, map[string]string{"id": eq(id)})
	return single(members, err, "getting member")
}

func (repo *memberRepository) patch(ctx context.Context, id int, body interface{}) ([]member.Member, error) {
	var members []member.Member
	err := repo.c.do(ctx, call{
		method:  rest.Patch,
		path:    restPrefix + "/members",
		query:   map[string]string{"id": eq(id)},
		headers: returnRepresentation,
		body:    body,
	}, &members)
	return members, err
}

func (repo *memberRepository) UpdateMember(ctx context.Context, mem member.Member) (member.Member, error) {
	members, err := repo.patch(ctx, mem.ID, memberBody{Name: mem.Name, Gender: mem.Gender, GroupID: mem.GroupID, IsActive: mem.IsActive})
	return single(members, err, "updating member")
}

func (repo *memberRepository) SetMemberActive(ctx context.Context, id int, active bool) (member.Member, error) {
	members, err := repo.patch(ctx, id, map[string]bool{"is_active": active})
	return single(members, err, "updating member status")
}

type attendanceRepository struct {
	c *Client
}

var (
	_ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check
	_ stats.Repository      = (*attendanceRepository)(nil) // interface compliance check
)

func NewAttendanceRepository(c *Client) *attendanceRepository {
	return &attendanceRepository{c: c}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, date core.Date, groupID int) ([]attendance.Record, error) {
	records := []attendance.Record{}
	err := repo.c.do(ctx, call{
		method: rest.Get,
		path:   restPrefix + "/attendance",
		query:  map[string]string{"select": "*", "date": eq(date), "group_id": eq(groupID)},
	}, &records)
	return records, errors.Wrap(err, "selecting attendance")
}

// BulkTake calls the procedure; the backend takes created_by from the session token.
func (repo *attendanceRepository) BulkTake(ctx context.Context, bt attendance.BulkTake) error {
	ids := bt.MemberIDs
	if ids == nil {
		ids = []int{}
	}
	err := repo.c.do(ctx, call{
		method: rest.Post,
		path:   restPrefix + "/rpc/bulk_take_attendance",
		body: map[string]interface{}{
			"member_ids":      ids,
			"attendance_date": bt.Date,
			"group_id_param":  bt.GroupID,
		},
	}, nil)
	return errors.Wrap(err, "calling bulk_take_attendance")
}

func (repo *attendanceRepository) Report(ctx context.Context, q attendance.ReportQuery) ([]attendance.ReportItem, error) {
	items := []attendance.ReportItem{}
	err := repo.c.do(ctx, call{
		method: rest.Post,
		path:   restPrefix + "/rpc/get_attendance_report",
		body: map[string]interface{}{
			"start_date":     q.Start,
			"end_date":       q.End,
			"group_id_param": q.GroupID,
			"alert_days":     attendance.AlertDays,
		},
	}, &items)
	return items, errors.Wrap(err, "calling get_attendance_report")
}

func (repo *attendanceRepository) DashboardStats(ctx context.Context, start, end core.Date) (stats.DashboardStats, error) {
	var ds stats.DashboardStats
	err := repo.c.do(ctx, call{
		method: rest.Post,
		path:   restPrefix + "/rpc/get_dashboard_stats",
		body:   map[string]interface{}{"start_date": start, "end_date": end},
	}, &ds)
	if err != nil {
		return stats.DashboardStats{}, errors.Wrap(err, "calling get_dashboard_stats")
	}
	if ds.Timeline == nil {
		ds.Timeline = []stats.TimelinePoint{}
	}
	return ds, nil
}

type profileRepository struct {
	c *Client
}

var _ session.ProfileRepository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(c *Client) *profileRepository {
	return &profileRepository{c: c}
}

func (repo *profileRepository) GetProfile(ctx context.Context, userID string) (session.Profile, error) {
	var profiles []session.Profile
	err := repo.c.do(ctx, call{
		method: rest.Get,
		path:   restPrefix + "/profiles",
		query:  map[string]string{"select": "*", "id": eq(userID)},
	}, &profiles)
	if err != nil {
		return session.Profile{}, errors.Wrap(err, "selecting profile")
	}
	if len(profiles) == 0 {
		return session.Profile{}, session.ErrProfileNotFound
	}
	return profiles[0], nil
}

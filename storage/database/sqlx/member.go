package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/member"
)

const memberColumns = "id, name, gender, group_id, is_active, created_at"

var memberOrdering = []core.DBOrdering{{Field: "name", Ascending: true}, {Field: "id", Ascending: true}}

type memberRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Gender    string    `db:"gender"`
	GroupID   int       `db:"group_id"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r memberRow) unpack() member.Member {
	return member.Member{
		ID:        r.ID,
		Name:      r.Name,
		Gender:    r.Gender,
		GroupID:   r.GroupID,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type memberRepository struct {
	db sqlx.ExtContext
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db sqlx.ExtContext) *memberRepository {
	return &memberRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to member.ErrNotFound
func (repo memberRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return member.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo memberRepository) selectMembers(ctx context.Context, where string, args ...interface{}) ([]member.Member, error) {
	var rows []memberRow
	q := "SELECT " + memberColumns + " FROM members " + where + " ORDER BY " + orderBy(memberOrdering)
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, args...); err != nil {
		return nil, wrapErr(err, "selecting members")
	}
	members := make([]member.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.unpack())
	}
	return members, nil
}

func (repo memberRepository) CreateMember(ctx context.Context, mem member.Member) (member.Member, error) {
	row := memberRow{
		Name:      mem.Name,
		Gender:    mem.Gender,
		GroupID:   mem.GroupID,
		IsActive:  mem.IsActive,
		CreatedAt: mem.CreatedAt,
	}
	q := `INSERT INTO members (name, gender, group_id, is_active, created_at)
		VALUES (:name, :gender, :group_id, :is_active, :created_at)
		RETURNING ` + memberColumns
	q, args, err := repo.db.BindNamed(q, row)
	if err != nil {
		return member.Member{}, wrapErr(err, "binding member")
	}
	if err = sqlx.GetContext(ctx, repo.db, &row, q, args...); err != nil {
		return member.Member{}, wrapErr(err, "inserting member")
	}
	return row.unpack(), nil
}

func (repo memberRepository) QueryMembers(ctx context.Context) ([]member.Member, error) {
	return repo.selectMembers(ctx, "")
}

func (repo memberRepository) QueryMembersByGroup(ctx context.Context, groupID int) ([]member.Member, error) {
	return repo.selectMembers(ctx, "WHERE group_id = $1", groupID)
}

func (repo memberRepository) GetMember(ctx context.Context, id int) (member.Member, error) {
	var row memberRow
	q := "SELECT " + memberColumns + " FROM members WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		return member.Member{}, repo.trapNoRowsErr(err, "selecting member")
	}
	return row.unpack(), nil
}

// UpdateMember only saves name, gender and group.
func (repo memberRepository) UpdateMember(ctx context.Context, mem member.Member) (member.Member, error) {
	var row memberRow
	q := "UPDATE members SET name = $2, gender = $3, group_id = $4 WHERE id = $1 RETURNING " + memberColumns
	if err := sqlx.GetContext(ctx, repo.db, &row, q, mem.ID, mem.Name, mem.Gender, mem.GroupID); err != nil {
		return member.Member{}, repo.trapNoRowsErr(err, "updating member")
	}
	return row.unpack(), nil
}

func (repo memberRepository) SetMemberActive(ctx context.Context, id int, active bool) (member.Member, error) {
	var row memberRow
	q := "UPDATE members SET is_active = $2 WHERE id = $1 RETURNING " + memberColumns
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id, active); err != nil {
		return member.Member{}, repo.trapNoRowsErr(err, "setting member active")
	}
	return row.unpack(), nil
}

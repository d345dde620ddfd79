package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/group"
)

var groupOrdering = core.DBOrdering{Field: "name", Ascending: true}

type groupRow struct {
	ID       int    `db:"id"`
	Name     string `db:"name"`
	Color    string `db:"color"`
	Category string `db:"category"`
}

func (r groupRow) unpack() group.Group {
	return group.Group{ID: r.ID, Name: r.Name, Color: r.Color, Category: r.Category}
}

type groupRepository struct {
	db sqlx.ExtContext
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db sqlx.ExtContext) *groupRepository {
	return &groupRepository{db: db}
}

func (repo groupRepository) QueryGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	q := "SELECT id, name, color, category FROM groups ORDER BY " + groupOrdering.String()
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q); err != nil {
		return nil, wrapErr(err, "selecting groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.unpack())
	}
	return groups, nil
}

func (repo groupRepository) GetGroup(ctx context.Context, id int) (group.Group, error) {
	var row groupRow
	q := "SELECT id, name, color, category FROM groups WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, wrapErr(err, "selecting group")
	}
	return row.unpack(), nil
}

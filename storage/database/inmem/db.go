package inmemdb

import (
	"sync"

	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/session"
)

// DB is the in-process gateway: tables guarded by one RWMutex, plus the procedures.
type DB struct {
	mu sync.RWMutex

	groups     map[int]group.Group
	members    map[int]member.Member
	attendance map[attendanceKey]attendance.Record
	accounts   map[string]session.Account // by ID
	profiles   map[string]session.Profile // by account ID

	memberPK     int
	attendancePK int
}

// a member has at most one record per date
type attendanceKey struct {
	memberID int
	date     string
}

func Open() *DB {
	return &DB{
		groups:     make(map[int]group.Group),
		members:    make(map[int]member.Member),
		attendance: make(map[attendanceKey]attendance.Record),
		accounts:   make(map[string]session.Account),
		profiles:   make(map[string]session.Profile),
	}
}

// SeedGroups inserts or replaces groups, used by the admin CLI and tests.
func (db *DB) SeedGroups(groups ...group.Group) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, grp := range groups {
		db.groups[grp.ID] = grp
	}
}

// DefaultGroups are seeded into a fresh memory gateway.
var DefaultGroups = []group.Group{
	{ID: 1, Name: "Jóvenes", Color: "#2563EB", Category: group.CategoryJovenes},
	{ID: 2, Name: "Prejóvenes", Color: "#16A34A", Category: group.CategoryPrejovenes},
}

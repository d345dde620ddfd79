package inmemdb

import (
	"context"
	"sort"

	"github.com/ministerio-jovenes/asistencia/core/member"
)

type memberRepository struct {
	db *DB
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *DB) *memberRepository {
	return &memberRepository{db: db}
}

// query returns members ordered by name, keep db.mu locked while calling it.
func (repo *memberRepository) query(keep func(member.Member) bool) []member.Member {
	members := make([]member.Member, 0, len(repo.db.members))
	for _, mem := range repo.db.members {
		if keep == nil || keep(mem) {
			members = append(members, mem)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Name == members[j].Name {
			return members[i].ID < members[j].ID
		}
		return members[i].Name < members[j].Name
	})
	return members
}

func (repo *memberRepository) CreateMember(_ context.Context, mem member.Member) (member.Member, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.memberPK++
	mem.ID = repo.db.memberPK
	repo.db.members[mem.ID] = mem
	return mem, nil
}

func (repo *memberRepository) QueryMembers(context.Context) ([]member.Member, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(nil), nil
}

func (repo *memberRepository) QueryMembersByGroup(_ context.Context, groupID int) ([]member.Member, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(mem member.Member) bool { return mem.GroupID == groupID }), nil
}

func (repo *memberRepository) GetMember(_ context.Context, id int) (member.Member, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if mem, ok := repo.db.members[id]; ok {
		return mem, nil
	}
	return member.Member{}, member.ErrNotFound
}

// UpdateMember only saves name, gender and group.
func (repo *memberRepository) UpdateMember(_ context.Context, mem member.Member) (member.Member, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.members[mem.ID]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	orig.Name = mem.Name
	orig.Gender = mem.Gender
	orig.GroupID = mem.GroupID
	repo.db.members[orig.ID] = orig
	return orig, nil
}

func (repo *memberRepository) SetMemberActive(_ context.Context, id int, active bool) (member.Member, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	mem, ok := repo.db.members[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	mem.IsActive = active
	repo.db.members[id] = mem
	return mem, nil
}

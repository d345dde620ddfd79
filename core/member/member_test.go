package member

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ministerio-jovenes/asistencia/core"
)

type repositoryMock struct {
	Repository // unused methods panic
	created    []Member
	members    map[int]Member
}

func (repo *repositoryMock) CreateMember(_ context.Context, mem Member) (Member, error) {
	mem.ID = len(repo.created) + 1
	repo.created = append(repo.created, mem)
	return mem, nil
}

func (repo *repositoryMock) SetMemberActive(_ context.Context, id int, active bool) (Member, error) {
	mem, ok := repo.members[id]
	if !ok {
		return Member{}, errors.Wrap(ErrNotFound, "select")
	}
	mem.IsActive = active
	repo.members[id] = mem
	return mem, nil
}

func newTestValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		nm        NewMember
		wantField string
	}{
		{name: "blank name", nm: NewMember{Name: "   ", Gender: "M", GroupID: 1}, wantField: "name"},
		{name: "unknown gender", nm: NewMember{Name: "Ana", Gender: "X", GroupID: 1}, wantField: "gender"},
		{name: "missing gender", nm: NewMember{Name: "Ana", GroupID: 1}, wantField: "gender"},
		{name: "missing group", nm: NewMember{Name: "Ana", Gender: "F"}, wantField: "group_id"},
		{name: "valid", nm: NewMember{Name: "  Ana Ruiz ", Gender: "F", GroupID: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repositoryMock{}
			svc := NewService(repo, newTestValidator())

			mem, err := svc.Create(context.Background(), tt.nm)
			if tt.wantField != "" {
				var vErrs validator.ValidationErrors
				require.True(t, errors.As(err, &vErrs), "got %v", err)
				assert.Equal(t, tt.wantField, vErrs[0].Field())
				assert.Empty(t, repo.created, "gateway must not be called")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ana Ruiz", mem.Name)
			assert.True(t, mem.IsActive)
			assert.Len(t, repo.created, 1)
		})
	}
}

func TestService_SetActive(t *testing.T) {
	repo := &repositoryMock{members: map[int]Member{1: {ID: 1, Name: "Ana", IsActive: true}}}
	svc := NewService(repo, newTestValidator())

	mem, err := svc.SetActive(context.Background(), 1, false)
	require.NoError(t, err)
	assert.False(t, mem.IsActive)

	_, err = svc.SetActive(context.Background(), 99, true)
	assert.Equal(t, ErrNotFound, err)

	_, err = svc.SetActive(context.Background(), 0, true)
	assert.Equal(t, ErrNotFound, err)
}

func TestFilter_Apply(t *testing.T) {
	members := []Member{
		{ID: 1, Name: "Ana Ruiz", GroupID: 1, IsActive: true},
		{ID: 2, Name: "Luis Paz", GroupID: 2, IsActive: true},
		{ID: 3, Name: "Juana Díaz", GroupID: 1, IsActive: false},
	}
	ids := func(mems []Member) []int {
		res := make([]int, 0, len(mems))
		for _, m := range mems {
			res = append(res, m.ID)
		}
		return res
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{name: "active only", filter: Filter{}, want: []int{1, 2}},
		{name: "with inactive", filter: Filter{ShowInactive: true}, want: []int{1, 2, 3}},
		{name: "by group", filter: Filter{GroupID: 1, ShowInactive: true}, want: []int{1, 3}},
		{name: "search", filter: Filter{Search: " AN ", ShowInactive: true}, want: []int{1, 3}},
		{name: "no match", filter: Filter{Search: "zzz"}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(members)))
		})
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	groups := []GroupInfo{{ID: 1, Name: "Jóvenes"}, {ID: 2, Name: "Prejóvenes"}}
	members := []Member{
		{ID: 1, Gender: GenderFemale, GroupID: 2, IsActive: true, CreatedAt: now.AddDate(0, -2, 0)},
		{ID: 2, Gender: GenderMale, GroupID: 2, IsActive: true, CreatedAt: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Gender: GenderMale, GroupID: 1, IsActive: true, CreatedAt: now},
		{ID: 4, Gender: GenderFemale, GroupID: 1, IsActive: false, CreatedAt: now},
	}

	sum := Summarize(members, groups, now)
	assert.Equal(t, 3, sum.TotalActive)
	assert.Equal(t, 2, sum.NewThisMonth)
	assert.Equal(t, []GroupCount{
		{GroupID: 2, Name: "Prejóvenes", Count: 2},
		{GroupID: 1, Name: "Jóvenes", Count: 1},
	}, sum.ByGroup)
	assert.Equal(t, GenderDistribution{Male: 2, Female: 1, MalePct: 67, FemalePct: 33, TotalMembers: 3}, sum.Gender)

	empty := Summarize(nil, groups, now)
	assert.Equal(t, 50, empty.Gender.MalePct)
	assert.Equal(t, 50, empty.Gender.FemalePct)
}

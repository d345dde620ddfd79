package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/session"
	authsvc "github.com/ministerio-jovenes/asistencia/services/auth"
	"github.com/ministerio-jovenes/asistencia/storage"
	inmemdb "github.com/ministerio-jovenes/asistencia/storage/database/inmem"
)

// OpenGateway returns an in-memory gateway seeded with the default groups.
func OpenGateway(conf *core.Config) *storage.Gateway {
	db := inmemdb.Open()
	db.SeedGroups(inmemdb.DefaultGroups...)
	return storage.OpenMemory(db, conf, core.NewNopLogger())
}

func CreateMember(t *testing.T, repo member.Repository, name, gender string, groupID int, isActive bool) member.Member {
	t.Helper()
	mem, err := repo.CreateMember(context.Background(), member.Member{
		Name:      name,
		Gender:    gender,
		GroupID:   groupID,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return mem
}

func CreateAccount(t *testing.T, accounts session.AccountRepository, email, pwd, fullName string) session.Account {
	t.Helper()
	acc, err := authsvc.CreateAccount(context.Background(), accounts, email, pwd, fullName)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

func TakeAttendance(t *testing.T, repo attendance.Repository, date core.Date, groupID int, memberIDs ...int) {
	t.Helper()
	if memberIDs == nil {
		memberIDs = []int{}
	}
	err := repo.BulkTake(context.Background(), attendance.BulkTake{MemberIDs: memberIDs, Date: date, GroupID: groupID})
	if err != nil {
		t.Fatalf("TakeAttendance() failed: %v", err)
	}
}

package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/stats"
)

type attendanceRepository struct {
	db *DB
}

var (
	_ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check
	_ stats.Repository      = (*attendanceRepository)(nil)
)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, date core.Date, groupID int) ([]attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendance {
		if rec.Date == date && rec.GroupID == groupID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].MemberID < records[j].MemberID })
	return records, nil
}

// BulkTake removes the (date, group) records of members left out, then upserts the others.
func (repo *attendanceRepository) BulkTake(_ context.Context, bt attendance.BulkTake) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	present := make(map[int]bool, len(bt.MemberIDs))
	for _, id := range bt.MemberIDs {
		present[id] = true
	}

	for key, rec := range repo.db.attendance {
		if rec.Date == bt.Date && rec.GroupID == bt.GroupID && !present[rec.MemberID] {
			delete(repo.db.attendance, key)
		}
	}

	now := time.Now().UTC()
	for id := range present {
		key := attendanceKey{memberID: id, date: bt.Date.String()}
		rec, ok := repo.db.attendance[key]
		if !ok {
			repo.db.attendancePK++
			rec = attendance.Record{
				ID:        repo.db.attendancePK,
				MemberID:  id,
				Date:      bt.Date,
				CreatedBy: bt.CreatedBy,
				CreatedAt: now,
			}
		}
		rec.GroupID = bt.GroupID
		repo.db.attendance[key] = rec
	}
	return nil
}

// Report lists the active members with their attendance over [Start, End].
func (repo *attendanceRepository) Report(_ context.Context, q attendance.ReportQuery) ([]attendance.ReportItem, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	alertFrom := q.End.AddDays(-attendance.AlertDays)
	items := make([]attendance.ReportItem, 0)
	for _, mem := range repo.db.members {
		if !mem.IsActive || (q.GroupID != nil && mem.GroupID != *q.GroupID) {
			continue
		}
		item := attendance.ReportItem{
			MemberID:  mem.ID,
			FullName:  mem.Name,
			Gender:    mem.Gender,
			GroupName: repo.db.groups[mem.GroupID].Name,
		}
		for _, rec := range repo.db.attendance {
			if rec.MemberID != mem.ID || rec.Date.After(q.End) {
				continue
			}
			if !rec.Date.Before(q.Start) {
				item.AttendanceCount++
			}
			if item.LastAttendance == nil || rec.Date.After(*item.LastAttendance) {
				last := rec.Date
				item.LastAttendance = &last
			}
		}
		item.NeedsAlert = item.LastAttendance == nil || !item.LastAttendance.After(alertFrom)
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].FullName < items[j].FullName })
	return items, nil
}

// DashboardStats aggregates [start, end] by group category and gender.
// Absences per category: active members x session days of the category - attendance, floored at 0.
func (repo *attendanceRepository) DashboardStats(_ context.Context, start, end core.Date) (stats.DashboardStats, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var st stats.DashboardStats
	timeline := make(map[core.Date]*stats.TimelinePoint)
	sessions := map[string]map[core.Date]bool{
		group.CategoryJovenes:    {},
		group.CategoryPrejovenes: {},
	}

	for _, rec := range repo.db.attendance {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		mem, ok := repo.db.members[rec.MemberID]
		if !ok {
			continue
		}
		category := repo.db.groups[rec.GroupID].Category

		st.Summary.TotalAttendance++
		switch mem.Gender {
		case member.GenderMale:
			st.ByGender.M++
		case member.GenderFemale:
			st.ByGender.F++
		}

		point, ok := timeline[rec.Date]
		if !ok {
			point = &stats.TimelinePoint{Date: rec.Date}
			timeline[rec.Date] = point
		}
		switch category {
		case group.CategoryJovenes:
			st.Summary.AttendanceJovenes++
			point.JovenesCount++
			sessions[category][rec.Date] = true
		case group.CategoryPrejovenes:
			st.Summary.AttendancePrejovenes++
			point.PrejovenesCount++
			sessions[category][rec.Date] = true
		}
	}

	active := make(map[string]int, 2)
	for _, mem := range repo.db.members {
		if mem.IsActive {
			active[repo.db.groups[mem.GroupID].Category]++
		}
	}
	absent := func(category string, attended int) int {
		n := active[category]*len(sessions[category]) - attended
		if n < 0 {
			return 0
		}
		return n
	}
	st.Summary.AbsentJovenes = absent(group.CategoryJovenes, st.Summary.AttendanceJovenes)
	st.Summary.AbsentPrejovenes = absent(group.CategoryPrejovenes, st.Summary.AttendancePrejovenes)

	st.Timeline = make([]stats.TimelinePoint, 0, len(timeline))
	for _, point := range timeline {
		st.Timeline = append(st.Timeline, *point)
	}
	sort.Slice(st.Timeline, func(i, j int) bool { return st.Timeline[i].Date.Before(st.Timeline[j].Date) })
	return st, nil
}

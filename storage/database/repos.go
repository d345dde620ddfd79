package database

import (
	"github.com/jmoiron/sqlx"

	"github.com/ministerio-jovenes/asistencia/core/attendance"
	boiledrepos "github.com/ministerio-jovenes/asistencia/storage/database/sqlboiler"
	sqlxrepos "github.com/ministerio-jovenes/asistencia/storage/database/sqlx"
)

// attendanceRepository reads rows with sqlx and calls the procedures through sqlboiler.
type attendanceRepository struct {
	*sqlxrepos.RecordRepository
	*boiledrepos.ProcedureRepository
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{
		RecordRepository:    sqlxrepos.NewRecordRepository(db),
		ProcedureRepository: boiledrepos.NewProcedureRepository(db),
	}
}

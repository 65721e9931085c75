package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escolaware/horario/core/schedule"
)

type horarioRow struct {
	ID           int64       `db:"id"`
	GrupoID      string      `db:"grupo_id"`
	Dia          string      `db:"dia"`
	SlotID       int         `db:"slot_id"`
	Disciplina   null.String `db:"disciplina"`
	Professor    null.String `db:"professor"`
	Turma        null.String `db:"turma"`
	UsuarioID    null.Int    `db:"usuario_id"`
	CriadoEm     time.Time   `db:"criado_em"`
	AtualizadoEm time.Time   `db:"atualizado_em"`
}

func (r horarioRow) toRecord() schedule.SlotRecord {
	rec := schedule.SlotRecord{
		ID:      r.ID,
		GrupoID: r.GrupoID,
		Dia:     r.Dia,
		SlotID:  r.SlotID,
	}
	aula := &schedule.Lesson{
		Disciplina: r.Disciplina.String,
		Professor:  r.Professor.String,
		Turma:      r.Turma.String,
	}
	if !aula.IsEmpty() {
		rec.Aula = aula
	}
	return rec
}

func nullStr(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) GetTimetable(ctx context.Context) (schedule.Timetable, error) {
	var rows []horarioRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM horarios ORDER BY grupo_id, dia, slot_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying timetable")
	}

	tt := make(schedule.Timetable)
	for _, row := range rows {
		rec := row.toRecord()
		if tt[rec.GrupoID] == nil {
			tt[rec.GrupoID] = make(schedule.GroupSchedule)
		}
		if tt[rec.GrupoID][rec.Dia] == nil {
			tt[rec.GrupoID][rec.Dia] = make(schedule.DaySchedule)
		}
		tt[rec.GrupoID][rec.Dia][rec.SlotID] = rec.Aula
	}
	return tt, nil
}

func (repo *scheduleRepository) GetGroupTimetable(ctx context.Context, grupoID string) (schedule.GroupSchedule, error) {
	var rows []horarioRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM horarios WHERE grupo_id = $1 ORDER BY dia, slot_id`, grupoID)
	if err != nil {
		return nil, errors.Wrap(err, "querying group timetable")
	}

	horario := make(schedule.GroupSchedule)
	for _, row := range rows {
		rec := row.toRecord()
		if horario[rec.Dia] == nil {
			horario[rec.Dia] = make(schedule.DaySchedule)
		}
		horario[rec.Dia][rec.SlotID] = rec.Aula
	}
	return horario, nil
}

func (repo *scheduleRepository) GetSlot(ctx context.Context, grupoID, dia string, slotID int) (schedule.SlotRecord, error) {
	var row horarioRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM horarios WHERE grupo_id = $1 AND dia = $2 AND slot_id = $3`,
		grupoID, dia, slotID)
	if err == sql.ErrNoRows {
		return schedule.SlotRecord{}, schedule.ErrSlotNotFound
	}
	if err != nil {
		return schedule.SlotRecord{}, errors.Wrap(err, "getting slot")
	}
	return row.toRecord(), nil
}

func (repo *scheduleRepository) GetGroupSlots(ctx context.Context, grupoID string) ([]schedule.SlotRecord, error) {
	var rows []horarioRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM horarios WHERE grupo_id = $1 ORDER BY dia, slot_id`, grupoID)
	if err != nil {
		return nil, errors.Wrap(err, "querying group slots")
	}

	recs := make([]schedule.SlotRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toRecord())
	}
	return recs, nil
}

func (repo *scheduleRepository) InsertSlot(ctx context.Context, rec schedule.SlotRecord, usuarioID int) (int64, error) {
	var aula schedule.Lesson
	if rec.Aula != nil {
		aula = *rec.Aula
	}

	var id int64
	err := repo.db.GetContext(ctx, &id,
		`INSERT INTO horarios (grupo_id, dia, slot_id, disciplina, professor, turma, usuario_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		rec.GrupoID, rec.Dia, rec.SlotID,
		nullStr(aula.Disciplina), nullStr(aula.Professor), nullStr(aula.Turma), usuarioID)
	if err != nil {
		return 0, errors.Wrap(err, "inserting slot")
	}
	return id, nil
}

func (repo *scheduleRepository) UpdateSlot(ctx context.Context, id int64, aula *schedule.Lesson, usuarioID int) error {
	var content schedule.Lesson
	if aula != nil {
		content = *aula
	}

	_, err := repo.db.ExecContext(ctx,
		`UPDATE horarios
		 SET disciplina = $1, professor = $2, turma = $3, usuario_id = $4, atualizado_em = now()
		 WHERE id = $5`,
		nullStr(content.Disciplina), nullStr(content.Professor), nullStr(content.Turma), usuarioID, id)
	return errors.Wrap(err, "updating slot")
}

func (repo *scheduleRepository) ClearSlot(ctx context.Context, grupoID, dia string, slotID, usuarioID int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE horarios
		 SET disciplina = NULL, professor = NULL, turma = NULL, usuario_id = $1, atualizado_em = now()
		 WHERE grupo_id = $2 AND dia = $3 AND slot_id = $4`,
		usuarioID, grupoID, dia, slotID)
	return errors.Wrap(err, "clearing slot")
}

func (repo *scheduleRepository) ClearGroup(ctx context.Context, grupoID string, usuarioID int) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE horarios
		 SET disciplina = NULL, professor = NULL, turma = NULL, usuario_id = $1, atualizado_em = now()
		 WHERE grupo_id = $2`,
		usuarioID, grupoID)
	return errors.Wrap(err, "clearing group")
}

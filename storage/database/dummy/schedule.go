package dummydb

import (
	"context"
	"sort"

	"github.com/escolaware/horario/core/schedule"
)

type scheduleRepository struct {
	db *scheduleTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) GetTimetable(ctx context.Context) (schedule.Timetable, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tt := make(schedule.Timetable)
	for _, rec := range repo.db.table {
		if tt[rec.GrupoID] == nil {
			tt[rec.GrupoID] = make(schedule.GroupSchedule)
		}
		if tt[rec.GrupoID][rec.Dia] == nil {
			tt[rec.GrupoID][rec.Dia] = make(schedule.DaySchedule)
		}
		tt[rec.GrupoID][rec.Dia][rec.SlotID] = rec.Aula.Clone()
	}
	return tt, nil
}

func (repo *scheduleRepository) GetGroupTimetable(ctx context.Context, grupoID string) (schedule.GroupSchedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	horario := make(schedule.GroupSchedule)
	for _, rec := range repo.db.table {
		if rec.GrupoID != grupoID {
			continue
		}
		if horario[rec.Dia] == nil {
			horario[rec.Dia] = make(schedule.DaySchedule)
		}
		horario[rec.Dia][rec.SlotID] = rec.Aula.Clone()
	}
	return horario, nil
}

func (repo *scheduleRepository) GetSlot(ctx context.Context, grupoID, dia string, slotID int) (schedule.SlotRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.table {
		if rec.GrupoID == grupoID && rec.Dia == dia && rec.SlotID == slotID {
			return cloneRecord(rec), nil
		}
	}
	return schedule.SlotRecord{}, schedule.ErrSlotNotFound
}

func (repo *scheduleRepository) GetGroupSlots(ctx context.Context, grupoID string) ([]schedule.SlotRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]schedule.SlotRecord, 0)
	for _, rec := range repo.db.table {
		if rec.GrupoID == grupoID {
			recs = append(recs, cloneRecord(rec))
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

func (repo *scheduleRepository) InsertSlot(ctx context.Context, rec schedule.SlotRecord, usuarioID int) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	rec.ID = repo.db.seq
	rec.Aula = rec.Aula.Clone()
	repo.db.table[rec.ID] = &rec
	return rec.ID, nil
}

func (repo *scheduleRepository) UpdateSlot(ctx context.Context, id int64, aula *schedule.Lesson, usuarioID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[id]
	if !ok {
		return schedule.ErrSlotNotFound
	}
	rec.Aula = aula.Clone()
	return nil
}

func (repo *scheduleRepository) ClearSlot(ctx context.Context, grupoID, dia string, slotID, usuarioID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, rec := range repo.db.table {
		if rec.GrupoID == grupoID && rec.Dia == dia && rec.SlotID == slotID {
			rec.Aula = nil
		}
	}
	return nil
}

func (repo *scheduleRepository) ClearGroup(ctx context.Context, grupoID string, usuarioID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, rec := range repo.db.table {
		if rec.GrupoID == grupoID {
			rec.Aula = nil
		}
	}
	return nil
}

// replaceAll swaps the whole table for the given payload, skipping empty
// lessons. Backs the snapshot repository's atomic restore.
func (t *scheduleTable) replaceAll(tt schedule.Timetable) {
	t.Lock()
	defer t.Unlock()

	t.table = make(map[int64]*schedule.SlotRecord)
	for grupoID, horario := range tt {
		for dia, aulas := range horario {
			for slotID, aula := range aulas {
				if aula == nil || aula.IsEmpty() {
					continue
				}
				t.seq++
				t.table[t.seq] = &schedule.SlotRecord{
					ID:      t.seq,
					GrupoID: grupoID,
					Dia:     dia,
					SlotID:  slotID,
					Aula:    aula.Clone(),
				}
			}
		}
	}
}

func cloneRecord(rec *schedule.SlotRecord) schedule.SlotRecord {
	out := *rec
	out.Aula = rec.Aula.Clone()
	return out
}

package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/snapshot"
)

type snapshotRepository struct {
	db       *snapshotTable
	schedule *scheduleTable
}

var _ snapshot.Repository = (*snapshotRepository)(nil) // interface compliance check

func NewSnapshotRepository(db *DB) snapshot.Repository {
	return &snapshotRepository{db: db.snapshot, schedule: db.schedule}
}

func (repo *snapshotRepository) CreateSnapshot(ctx context.Context, snap snapshot.Snapshot) (snapshot.Snapshot, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	snap.Dados = snap.Dados.Clone()
	repo.db.table[snap.ID] = &snap
	return cloneSnapshot(&snap), nil
}

func (repo *snapshotRepository) ListSnapshots(ctx context.Context, limit int) ([]snapshot.Snapshot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	snaps := make([]snapshot.Snapshot, 0, len(repo.db.table))
	for _, snap := range repo.db.table {
		snaps = append(snaps, cloneSnapshot(snap))
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CriadoEm.After(snaps[j].CriadoEm) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

func (repo *snapshotRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (snapshot.Snapshot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if snap, ok := repo.db.table[id]; ok {
		return cloneSnapshot(snap), nil
	}
	return snapshot.Snapshot{}, snapshot.ErrNotFound
}

func (repo *snapshotRepository) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return snapshot.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *snapshotRepository) ReplaceTimetable(ctx context.Context, tt schedule.Timetable, usuarioID int) error {
	repo.schedule.replaceAll(tt)
	return nil
}

func cloneSnapshot(snap *snapshot.Snapshot) snapshot.Snapshot {
	out := *snap
	out.Dados = snap.Dados.Clone()
	return out
}

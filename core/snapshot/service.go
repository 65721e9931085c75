package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/user"
)

// DefaultListLimit caps List when no explicit limit is given.
const DefaultListLimit = 50

var (
	// errors
	ErrNotFound     = errors.New("snapshot not found")
	ErrUnknownGroup = errors.New("unknown group")
)

const tableHorarios = "horarios"

type (
	Repository interface {
		CreateSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error)
		// ListSnapshots returns snapshots newest first, owner attribution
		// resolved, up to limit.
		ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error)
		GetSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error)
		DeleteSnapshot(ctx context.Context, id uuid.UUID) error
		// ReplaceTimetable atomically overwrites every group's schedule with the
		// given payload. Either the whole replace lands or none of it does.
		ReplaceTimetable(ctx context.Context, tt schedule.Timetable, usuarioID int) error
	}

	Service struct {
		repo   Repository
		audit  *audit.Service
		layout schedule.Layout
	}
)

func NewService(repo Repository, auditSvc *audit.Service, layout schedule.Layout) *Service {
	return &Service{repo: repo, audit: auditSvc, layout: layout}
}

// Create stores an immutable deep copy of the whole timetable.
func (svc *Service) Create(ctx context.Context, ns NewSnapshot, actor user.User) (Snapshot, error) {
	if err := ns.Validate(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ID:       uuid.New(),
		Nome:     ns.Nome,
		Dados:    ns.Dados.Clone(),
		Usuario:  actor.Ref(),
		CriadoEm: time.Now().UTC(),
	}
	if ns.Descricao != "" {
		desc := ns.Descricao
		snap.Descricao = &desc
	}
	return svc.repo.CreateSnapshot(ctx, snap)
}

func (svc *Service) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return svc.repo.ListSnapshots(ctx, limit)
}

func (svc *Service) Get(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	return svc.repo.GetSnapshot(ctx, id)
}

// Delete permanently removes a snapshot; irreversible.
func (svc *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return svc.repo.DeleteSnapshot(ctx, id)
}

// Diff compares one group between the stored snapshot and the live timetable,
// field by field in lesson-number space. The walk follows the live group's slot
// layout; if the layout changed since the snapshot was taken, lesson numbers
// may not line up with the ones in force back then.
func (svc *Service) Diff(ctx context.Context, id uuid.UUID, grupoID string, live schedule.Timetable) ([]FieldDiff, error) {
	grupo, ok := svc.layout.Group(grupoID)
	if !ok {
		return nil, ErrUnknownGroup
	}
	snap, err := svc.repo.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return diffGroup(snap.Dados[grupoID], live[grupoID], grupo, svc.layout.Dias), nil
}

// diffGroup walks every day and aula-typed slot, comparing the three content
// fields with missing slots defaulting to empty strings. Equal values produce
// no record.
func diffGroup(snapSched, liveSched schedule.GroupSchedule, grupo schedule.Group, dias []string) []FieldDiff {
	diffs := make([]FieldDiff, 0)

	for _, dia := range dias {
		var numAula int
		for _, slot := range grupo.Slots {
			if slot.Tipo != schedule.SlotAula {
				continue
			}
			numAula++

			aSnap := snapSched[dia][slot.ID]
			aLive := liveSched[dia][slot.ID]

			for _, campo := range [...]string{"turma", "disciplina", "professor"} {
				de := fieldValue(aSnap, campo)
				para := fieldValue(aLive, campo)
				if de != para {
					diffs = append(diffs, FieldDiff{
						Dia:   dia,
						Aula:  numAula,
						Campo: campo,
						De:    de,
						Para:  para,
					})
				}
			}
		}
	}
	return diffs
}

func fieldValue(aula *schedule.Lesson, campo string) string {
	if aula == nil {
		return ""
	}
	switch campo {
	case "turma":
		return aula.Turma
	case "disciplina":
		return aula.Disciplina
	case "professor":
		return aula.Professor
	}
	return ""
}

// Restore overwrites the live timetable for all groups with the snapshot's
// payload as a single atomic replace, then writes exactly one coarse audit
// entry. A failed replace reports failure with no partial state.
func (svc *Service) Restore(ctx context.Context, id uuid.UUID, actor user.User) error {
	snap, err := svc.repo.GetSnapshot(ctx, id)
	if err != nil {
		return err
	}

	if err = svc.repo.ReplaceTimetable(ctx, snap.Dados, actor.ID); err != nil {
		return err
	}

	_, err = svc.audit.Record(ctx, audit.NewEntry{
		TipoAlteracao: audit.KindAtualizar,
		Tabela:        tableHorarios,
		UsuarioID:     actor.ID,
		Detalhes: fmt.Sprintf("Snapshot restaurado: %q (criado em %s)",
			snap.Nome, snap.CriadoEm.Format(time.RFC3339)),
	})
	return err
}

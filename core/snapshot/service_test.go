package snapshot_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/snapshot"
	"github.com/escolaware/horario/core/user"
	dummydb "github.com/escolaware/horario/storage/database/dummy"
)

func testLayout() schedule.Layout {
	return schedule.Layout{
		Dias: []string{"Segunda", "Terça"},
		Grupos: []schedule.Group{{
			ID:   "fund2",
			Nome: "6º ao 8º ano",
			Slots: []schedule.Slot{
				{ID: 1, Label: "Aula 1", Tipo: schedule.SlotAula},
				{ID: 2, Label: "Intervalo", Tipo: schedule.SlotIntervalo},
				{ID: 3, Label: "Aula 2", Tipo: schedule.SlotAula},
			},
		}},
	}
}

type testEnv struct {
	snapSvc  *snapshot.Service
	schedSvc *schedule.Service
	auditSvc *audit.Service
	actor    user.User
}

func setup(t *testing.T) testEnv {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	actor, err := usrSvc.Create(context.Background(), user.NewUser{
		Email:  "dir@escola.br",
		Nome:   "Diretora",
		Senha:  "s3nha",
		Perfil: "direcao",
	})
	require.NoError(t, err)

	layout := testLayout()
	auditSvc := audit.NewService(dummydb.NewAuditRepository(db))
	return testEnv{
		snapSvc:  snapshot.NewService(dummydb.NewSnapshotRepository(db), auditSvc, layout),
		schedSvc: schedule.NewService(dummydb.NewScheduleRepository(db), auditSvc, layout),
		auditSvc: auditSvc,
		actor:    actor,
	}
}

func (env testEnv) saveSlot(t *testing.T, dia string, slotID int, disc, prof, turma string) {
	t.Helper()
	_, err := env.schedSvc.SaveSlot(context.Background(), schedule.SlotInput{
		GrupoID:    "fund2",
		Dia:        dia,
		SlotID:     slotID,
		Disciplina: disc,
		Professor:  prof,
		Turma:      turma,
	}, env.actor)
	require.NoError(t, err)
}

func (env testEnv) capture(t *testing.T, nome string) snapshot.Snapshot {
	t.Helper()
	ctx := context.Background()

	tt, err := env.schedSvc.Timetable(ctx)
	require.NoError(t, err)
	snap, err := env.snapSvc.Create(ctx, snapshot.NewSnapshot{Nome: nome, Dados: tt}, env.actor)
	require.NoError(t, err)
	return snap
}

func TestService_Create(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	env.saveSlot(t, "Segunda", 1, "Matemática", "Alice", "6A")

	tt, err := env.schedSvc.Timetable(ctx)
	require.NoError(t, err)

	snap, err := env.snapSvc.Create(ctx, snapshot.NewSnapshot{
		Nome:      "antes da reunião",
		Descricao: "grade de março",
		Dados:     tt,
	}, env.actor)
	require.NoError(t, err)

	assert.NotEqual(t, [16]byte{}, [16]byte(snap.ID))
	assert.Equal(t, env.actor.Ref(), snap.Usuario)
	require.NotNil(t, snap.Descricao)
	assert.Equal(t, "grade de março", *snap.Descricao)
	assert.False(t, snap.CriadoEm.IsZero())

	// the stored payload is a deep copy of the live timetable
	got, err := env.snapSvc.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, tt, got.Dados)

	tt["fund2"]["Segunda"][1].Disciplina = "Física"
	got, err = env.snapSvc.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Matemática", got.Dados["fund2"]["Segunda"][1].Disciplina)

	t.Run("empty description stays nil", func(t *testing.T) {
		snap := env.capture(t, "sem descrição")
		assert.Nil(t, snap.Descricao)
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := env.snapSvc.Create(ctx, snapshot.NewSnapshot{Nome: "  ", Dados: tt}, env.actor)
		assert.Error(t, err)
	})

	t.Run("payload is required", func(t *testing.T) {
		_, err := env.snapSvc.Create(ctx, snapshot.NewSnapshot{Nome: "vazio"}, env.actor)
		assert.Error(t, err)
	})
}

func TestService_ListGetDelete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	snaps := []snapshot.Snapshot{
		env.capture(t, "um"),
		env.capture(t, "dois"),
		env.capture(t, "três"),
	}

	list, err := env.snapSvc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i-1].CriadoEm.Before(list[i].CriadoEm))
	}

	list, err = env.snapSvc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = env.snapSvc.Get(ctx, uuid.Nil)
	assert.Equal(t, snapshot.ErrNotFound, err)

	require.NoError(t, env.snapSvc.Delete(ctx, snaps[0].ID))
	_, err = env.snapSvc.Get(ctx, snaps[0].ID)
	assert.Equal(t, snapshot.ErrNotFound, err)
	assert.Equal(t, snapshot.ErrNotFound, env.snapSvc.Delete(ctx, snaps[0].ID))
}

func TestService_Diff(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	env.saveSlot(t, "Segunda", 1, "Matemática", "Alice", "6A")
	env.saveSlot(t, "Segunda", 3, "História", "Bruno", "6A")
	snap := env.capture(t, "base")

	live := func() schedule.Timetable {
		tt, err := env.schedSvc.Timetable(ctx)
		require.NoError(t, err)
		return tt
	}

	t.Run("identical timetables produce no diff", func(t *testing.T) {
		diffs, err := env.snapSvc.Diff(ctx, snap.ID, "fund2", live())
		require.NoError(t, err)
		assert.Empty(t, diffs)
	})

	t.Run("changed fields are reported in lesson-number space", func(t *testing.T) {
		env.saveSlot(t, "Segunda", 3, "Geografia", "Bruno", "6A")

		diffs, err := env.snapSvc.Diff(ctx, snap.ID, "fund2", live())
		require.NoError(t, err)
		// slot 3 is the second teachable slot
		assert.Equal(t, []snapshot.FieldDiff{
			{Dia: "Segunda", Aula: 2, Campo: "disciplina", De: "História", Para: "Geografia"},
		}, diffs)
	})

	t.Run("cleared slot diffs every field", func(t *testing.T) {
		err := env.schedSvc.ClearSlot(ctx, schedule.ClearInput{GrupoID: "fund2", Dia: "Segunda", SlotID: 1}, env.actor)
		require.NoError(t, err)

		diffs, err := env.snapSvc.Diff(ctx, snap.ID, "fund2", live())
		require.NoError(t, err)
		assert.Contains(t, diffs, snapshot.FieldDiff{Dia: "Segunda", Aula: 1, Campo: "turma", De: "6A", Para: ""})
		assert.Contains(t, diffs, snapshot.FieldDiff{Dia: "Segunda", Aula: 1, Campo: "disciplina", De: "Matemática", Para: ""})
		assert.Contains(t, diffs, snapshot.FieldDiff{Dia: "Segunda", Aula: 1, Campo: "professor", De: "Alice", Para: ""})
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := env.snapSvc.Diff(ctx, snap.ID, "lol", live())
		assert.Equal(t, snapshot.ErrUnknownGroup, err)
	})
}

func TestService_Restore(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	env.saveSlot(t, "Segunda", 1, "Matemática", "Alice", "6A")
	snap := env.capture(t, "grade aprovada")

	// drift the live timetable away from the snapshot
	env.saveSlot(t, "Segunda", 1, "Física", "Carla", "6B")
	env.saveSlot(t, "Terça", 3, "Artes", "Dora", "7A")

	before, err := env.auditSvc.Query(ctx, audit.Filter{})
	require.NoError(t, err)

	require.NoError(t, env.snapSvc.Restore(ctx, snap.ID, env.actor))

	tt, err := env.schedSvc.Timetable(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Dados, tt)

	diffs, err := env.snapSvc.Diff(ctx, snap.ID, "fund2", tt)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	// exactly one coarse entry, not one per touched slot
	after, err := env.auditSvc.Query(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	e := after[0]
	assert.Equal(t, audit.KindAtualizar, e.TipoAlteracao)
	assert.Nil(t, e.GrupoID)
	assert.Nil(t, e.SlotID)
	require.NotNil(t, e.Detalhes)
	assert.True(t, strings.HasPrefix(*e.Detalhes, `Snapshot restaurado: "grade aprovada" (criado em `), *e.Detalhes)

	t.Run("unknown snapshot", func(t *testing.T) {
		err := env.snapSvc.Restore(ctx, uuid.Nil, env.actor)
		assert.Equal(t, snapshot.ErrNotFound, err)
	})
}

func TestUnifiedDiff(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	env.saveSlot(t, "Segunda", 1, "Matemática", "Alice", "6A")
	snap := env.capture(t, "base")

	tt, err := env.schedSvc.Timetable(ctx)
	require.NoError(t, err)

	t.Run("identical grids render empty", func(t *testing.T) {
		out, err := snapshot.UnifiedDiff(snap, "fund2", tt, testLayout())
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("changes render as a unified diff", func(t *testing.T) {
		env.saveSlot(t, "Segunda", 1, "Física", "Alice", "6A")
		tt, err := env.schedSvc.Timetable(ctx)
		require.NoError(t, err)

		out, err := snapshot.UnifiedDiff(snap, "fund2", tt, testLayout())
		require.NoError(t, err)
		assert.Contains(t, out, "-Segunda aula 1: Matemática | Alice | 6A")
		assert.Contains(t, out, "+Segunda aula 1: Física | Alice | 6A")
		assert.Contains(t, out, `snapshot "base"`)
		assert.Contains(t, out, "horário atual")
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := snapshot.UnifiedDiff(snap, "lol", tt, testLayout())
		assert.Equal(t, snapshot.ErrUnknownGroup, err)
	})
}

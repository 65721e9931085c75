package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/user"
	dummydb "github.com/escolaware/horario/storage/database/dummy"
)

func setup(t *testing.T) (*audit.Service, *user.Service, user.User) {
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

	return audit.NewService(dummydb.NewAuditRepository(db)), usrSvc, actor
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func record(t *testing.T, svc *audit.Service, ne audit.NewEntry) audit.Entry {
	t.Helper()
	entry, err := svc.Record(context.Background(), ne)
	require.NoError(t, err)
	return entry
}

func TestService_Record(t *testing.T) {
	svc, _, actor := setup(t)
	ctx := context.Background()

	t.Run("requires acting user", func(t *testing.T) {
		_, err := svc.Record(ctx, audit.NewEntry{
			TipoAlteracao: audit.KindCriar,
			Tabela:        "horarios",
		})
		assert.Equal(t, audit.ErrUserRequired, err)
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := svc.Record(ctx, audit.NewEntry{
			TipoAlteracao: audit.KindCriar,
			Tabela:        "horarios",
			UsuarioID:     12345,
		})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("stamps and attributes the entry", func(t *testing.T) {
		entry := record(t, svc, audit.NewEntry{
			TipoAlteracao: audit.KindCriar,
			Tabela:        "horarios",
			GrupoID:       strPtr("fund2"),
			Dia:           strPtr("Segunda"),
			SlotID:        intPtr(1),
			ValorNovo:     "Matemática",
			UsuarioID:     actor.ID,
			Detalhes:      "Horário criado: Matemática - Alice - 6A",
		})
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.Timestamp.IsZero())
		assert.Equal(t, actor.Ref(), entry.Usuario)
		require.NotNil(t, entry.Detalhes)
		assert.Equal(t, "Horário criado: Matemática - Alice - 6A", *entry.Detalhes)
	})
}

func TestService_Query(t *testing.T) {
	svc, usrSvc, actor := setup(t)
	ctx := context.Background()

	outro, err := usrSvc.Create(ctx, user.NewUser{
		Email:  "vice@escola.br",
		Nome:   "Vice",
		Senha:  "s3nha",
		Perfil: "vice_direcao",
	})
	require.NoError(t, err)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	seed := []audit.NewEntry{
		{TipoAlteracao: audit.KindCriar, Tabela: "horarios", GrupoID: strPtr("fund2"), Dia: strPtr("Segunda"), SlotID: intPtr(1), UsuarioID: actor.ID, Timestamp: base},
		{TipoAlteracao: audit.KindAtualizar, Tabela: "horarios", GrupoID: strPtr("fund2"), Dia: strPtr("Segunda"), SlotID: intPtr(1), CampoAlterado: strPtr("professor"), UsuarioID: actor.ID, Timestamp: base.Add(time.Hour)},
		{TipoAlteracao: audit.KindAtualizar, Tabela: "horarios", GrupoID: strPtr("fund2"), Dia: strPtr("Terça"), SlotID: intPtr(2), CampoAlterado: strPtr("disciplina"), UsuarioID: outro.ID, Timestamp: base.Add(2 * time.Hour)},
		{TipoAlteracao: audit.KindLimpar, Tabela: "horarios", GrupoID: strPtr("medio"), Dia: strPtr("Segunda"), SlotID: intPtr(1), UsuarioID: outro.ID, Timestamp: base.Add(3 * time.Hour)},
	}
	for _, ne := range seed {
		record(t, svc, ne)
	}

	tests := []struct {
		name   string
		filter audit.Filter
		want   int
	}{
		{name: "no filter returns all", filter: audit.Filter{}, want: 4},
		{name: "by group", filter: audit.Filter{GrupoID: "fund2"}, want: 3},
		{name: "by day", filter: audit.Filter{Dia: "Segunda"}, want: 3},
		{name: "by slot", filter: audit.Filter{SlotID: 2}, want: 1},
		{name: "by user", filter: audit.Filter{UsuarioID: outro.ID}, want: 2},
		{name: "by kind", filter: audit.Filter{TipoAlteracao: audit.KindAtualizar}, want: 2},
		{name: "filters are conjunctive", filter: audit.Filter{GrupoID: "fund2", Dia: "Segunda", UsuarioID: actor.ID}, want: 2},
		{name: "start bound is inclusive", filter: audit.Filter{DataInicio: base.Add(time.Hour)}, want: 3},
		{name: "end bound is inclusive", filter: audit.Filter{DataFim: base.Add(time.Hour)}, want: 2},
		{name: "limit caps the result", filter: audit.Filter{Limite: 2}, want: 2},
		{name: "no match", filter: audit.Filter{GrupoID: "nope"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
		})
	}

	t.Run("newest first", func(t *testing.T) {
		entries, err := svc.Query(ctx, audit.Filter{})
		require.NoError(t, err)
		require.Len(t, entries, 4)
		for i := 1; i < len(entries); i++ {
			assert.False(t, entries[i-1].Timestamp.Before(entries[i].Timestamp))
		}
		assert.Equal(t, audit.KindLimpar, entries[0].TipoAlteracao)
	})
}

func TestService_SlotHistory(t *testing.T) {
	svc, _, actor := setup(t)
	ctx := context.Background()

	record(t, svc, audit.NewEntry{
		TipoAlteracao: audit.KindCriar, Tabela: "horarios",
		GrupoID: strPtr("fund2"), Dia: strPtr("Segunda"), SlotID: intPtr(1),
		UsuarioID: actor.ID,
	})
	record(t, svc, audit.NewEntry{
		TipoAlteracao: audit.KindAtualizar, Tabela: "horarios",
		GrupoID: strPtr("fund2"), Dia: strPtr("Segunda"), SlotID: intPtr(2),
		UsuarioID: actor.ID,
	})
	// coarse entry without slot coordinates stays out of any slot history
	record(t, svc, audit.NewEntry{
		TipoAlteracao: audit.KindAtualizar, Tabela: "snapshots",
		UsuarioID: actor.ID,
	})

	entries, err := svc.SlotHistory(ctx, "fund2", "Segunda", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.KindCriar, entries[0].TipoAlteracao)
}

func TestService_Statistics(t *testing.T) {
	svc, usrSvc, actor := setup(t)
	ctx := context.Background()

	outro, err := usrSvc.Create(ctx, user.NewUser{
		Email:  "prof@escola.br",
		Nome:   "Alice",
		Senha:  "s3nha",
		Perfil: "professor",
	})
	require.NoError(t, err)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record(t, svc, audit.NewEntry{
			TipoAlteracao: audit.KindAtualizar, Tabela: "horarios",
			GrupoID: strPtr("fund2"), UsuarioID: actor.ID,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
	record(t, svc, audit.NewEntry{
		TipoAlteracao: audit.KindCriar, Tabela: "horarios",
		GrupoID: strPtr("medio"), UsuarioID: outro.ID,
		Timestamp: base.Add(3 * time.Hour),
	})

	stats, err := svc.Statistics(ctx, audit.StatsFilter{})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalAlteracoes)
	assert.Equal(t, 2, stats.TotalUsuarios)
	assert.Equal(t, 2, stats.TotalGrupos)
	require.NotNil(t, stats.PrimeiraAlteracao)
	require.NotNil(t, stats.UltimaAlteracao)
	assert.Equal(t, base, *stats.PrimeiraAlteracao)
	assert.Equal(t, base.Add(3*time.Hour), *stats.UltimaAlteracao)

	assert.Equal(t, []audit.KindCount{
		{Tipo: audit.KindAtualizar, Quantidade: 3},
		{Tipo: audit.KindCriar, Quantidade: 1},
	}, stats.PorTipo)

	assert.Equal(t, []audit.UserCount{
		{Nome: "Diretora", Perfil: user.RoleDirecao, Quantidade: 3},
		{Nome: "Alice", Perfil: user.RoleProfessor, Quantidade: 1},
	}, stats.PorUsuario)

	t.Run("window bounds", func(t *testing.T) {
		stats, err := svc.Statistics(ctx, audit.StatsFilter{
			DataInicio: base.Add(time.Hour),
			DataFim:    base.Add(2 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalAlteracoes)
		assert.Equal(t, 1, stats.TotalUsuarios)
	})
}

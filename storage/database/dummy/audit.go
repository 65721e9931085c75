package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/user"
)

type auditRepository struct {
	db    *auditTable
	users *userTable
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) audit.Repository {
	return &auditRepository{db: db.audit, users: db.user}
}

func (repo *auditRepository) CreateEntry(ctx context.Context, ne audit.NewEntry) (audit.Entry, error) {
	usr, ok := repo.users.get(ne.UsuarioID)
	if !ok {
		return audit.Entry{}, user.ErrNotFound
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	entry := audit.Entry{
		ID:            repo.db.seq,
		TipoAlteracao: ne.TipoAlteracao,
		Tabela:        ne.Tabela,
		RegistroID:    ne.RegistroID,
		GrupoID:       ne.GrupoID,
		Dia:           ne.Dia,
		SlotID:        ne.SlotID,
		CampoAlterado: ne.CampoAlterado,
		ValorAnterior: ne.ValorAnterior,
		ValorNovo:     ne.ValorNovo,
		Usuario:       usr.Ref(),
		Timestamp:     ne.Timestamp,
	}
	if ne.Detalhes != "" {
		det := ne.Detalhes
		entry.Detalhes = &det
	}
	repo.db.table[entry.ID] = &entry
	return entry, nil
}

func (repo *auditRepository) FilterEntries(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]audit.Entry, 0)
	for _, entry := range repo.db.table {
		if matches(entry, filter) {
			entries = append(entries, *entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if filter.Limite > 0 && len(entries) > filter.Limite {
		entries = entries[:filter.Limite]
	}
	return entries, nil
}

func matches(entry *audit.Entry, filter audit.Filter) bool {
	if filter.GrupoID != "" && (entry.GrupoID == nil || *entry.GrupoID != filter.GrupoID) {
		return false
	}
	if filter.Dia != "" && (entry.Dia == nil || *entry.Dia != filter.Dia) {
		return false
	}
	if filter.SlotID != 0 && (entry.SlotID == nil || *entry.SlotID != filter.SlotID) {
		return false
	}
	if filter.UsuarioID != 0 && entry.Usuario.ID != filter.UsuarioID {
		return false
	}
	if filter.TipoAlteracao != "" && entry.TipoAlteracao != filter.TipoAlteracao {
		return false
	}
	if !filter.DataInicio.IsZero() && entry.Timestamp.Before(filter.DataInicio) {
		return false
	}
	if !filter.DataFim.IsZero() && entry.Timestamp.After(filter.DataFim) {
		return false
	}
	return true
}

func (repo *auditRepository) EntryStats(ctx context.Context, filter audit.StatsFilter) (audit.Stats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	stats := audit.Stats{
		PorTipo:    []audit.KindCount{},
		PorUsuario: []audit.UserCount{},
	}

	var (
		usuarios = make(map[int]bool)
		grupos   = make(map[string]bool)
		porTipo  = make(map[audit.Kind]int)
		porUser  = make(map[int]*audit.UserCount)
		primeira time.Time
		ultima   time.Time
	)
	for _, entry := range repo.db.table {
		if !filter.DataInicio.IsZero() && entry.Timestamp.Before(filter.DataInicio) {
			continue
		}
		if !filter.DataFim.IsZero() && entry.Timestamp.After(filter.DataFim) {
			continue
		}

		stats.TotalAlteracoes++
		usuarios[entry.Usuario.ID] = true
		if entry.GrupoID != nil {
			grupos[*entry.GrupoID] = true
		}
		porTipo[entry.TipoAlteracao]++
		if uc, ok := porUser[entry.Usuario.ID]; ok {
			uc.Quantidade++
		} else {
			porUser[entry.Usuario.ID] = &audit.UserCount{
				Nome:       entry.Usuario.Nome,
				Perfil:     entry.Usuario.Perfil,
				Quantidade: 1,
			}
		}
		if primeira.IsZero() || entry.Timestamp.Before(primeira) {
			primeira = entry.Timestamp
		}
		if entry.Timestamp.After(ultima) {
			ultima = entry.Timestamp
		}
	}

	stats.TotalUsuarios = len(usuarios)
	stats.TotalGrupos = len(grupos)
	if !primeira.IsZero() {
		stats.PrimeiraAlteracao = &primeira
	}
	if !ultima.IsZero() {
		stats.UltimaAlteracao = &ultima
	}

	for tipo, count := range porTipo {
		stats.PorTipo = append(stats.PorTipo, audit.KindCount{Tipo: tipo, Quantidade: count})
	}
	sort.Slice(stats.PorTipo, func(i, j int) bool {
		if stats.PorTipo[i].Quantidade == stats.PorTipo[j].Quantidade {
			return stats.PorTipo[i].Tipo < stats.PorTipo[j].Tipo
		}
		return stats.PorTipo[i].Quantidade > stats.PorTipo[j].Quantidade
	})

	for _, uc := range porUser {
		stats.PorUsuario = append(stats.PorUsuario, *uc)
	}
	sort.Slice(stats.PorUsuario, func(i, j int) bool {
		if stats.PorUsuario[i].Quantidade == stats.PorUsuario[j].Quantidade {
			return stats.PorUsuario[i].Nome < stats.PorUsuario[j].Nome
		}
		return stats.PorUsuario[i].Quantidade > stats.PorUsuario[j].Quantidade
	})
	if len(stats.PorUsuario) > 10 {
		stats.PorUsuario = stats.PorUsuario[:10]
	}
	return stats, nil
}

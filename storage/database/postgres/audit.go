package pgrepos

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/user"
)

type auditRow struct {
	ID            int64       `db:"id"`
	TipoAlteracao string      `db:"tipo_alteracao"`
	Tabela        string      `db:"tabela"`
	RegistroID    null.Int64  `db:"registro_id"`
	GrupoID       null.String `db:"grupo_id"`
	Dia           null.String `db:"dia"`
	SlotID        null.Int    `db:"slot_id"`
	ValorAnterior null.JSON   `db:"valor_anterior"`
	ValorNovo     null.JSON   `db:"valor_novo"`
	CampoAlterado null.String `db:"campo_alterado"`
	UsuarioID     int         `db:"usuario_id"`
	Timestamp     time.Time   `db:"timestamp"`
	Detalhes      null.String `db:"detalhes"`
	UsuarioNome   string      `db:"usuario_nome"`
	UsuarioPerfil string      `db:"usuario_perfil"`
}

func (r auditRow) toEntry() (audit.Entry, error) {
	entry := audit.Entry{
		ID:            r.ID,
		TipoAlteracao: audit.Kind(r.TipoAlteracao),
		Tabela:        r.Tabela,
		Usuario: user.Ref{
			ID:     r.UsuarioID,
			Nome:   r.UsuarioNome,
			Perfil: user.Role(r.UsuarioPerfil),
		},
		Timestamp: r.Timestamp.UTC(),
	}
	if r.RegistroID.Valid {
		entry.RegistroID = &r.RegistroID.Int64
	}
	if r.GrupoID.Valid {
		entry.GrupoID = &r.GrupoID.String
	}
	if r.Dia.Valid {
		entry.Dia = &r.Dia.String
	}
	if r.SlotID.Valid {
		entry.SlotID = &r.SlotID.Int
	}
	if r.CampoAlterado.Valid {
		entry.CampoAlterado = &r.CampoAlterado.String
	}
	if r.Detalhes.Valid {
		entry.Detalhes = &r.Detalhes.String
	}

	var err error
	if entry.ValorAnterior, err = decodeValue(r.ValorAnterior); err != nil {
		return audit.Entry{}, errors.Wrap(err, "decoding valor_anterior")
	}
	if entry.ValorNovo, err = decodeValue(r.ValorNovo); err != nil {
		return audit.Entry{}, errors.Wrap(err, "decoding valor_novo")
	}
	return entry, nil
}

func decodeValue(raw null.JSON) (interface{}, error) {
	if !raw.Valid || len(raw.JSON) == 0 {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw.JSON, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func encodeValue(v interface{}) (null.JSON, error) {
	if v == nil {
		return null.JSON{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return null.JSON{}, err
	}
	return null.JSONFrom(raw), nil
}

type auditRepository struct {
	db *sqlx.DB
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *sqlx.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) CreateEntry(ctx context.Context, ne audit.NewEntry) (audit.Entry, error) {
	anterior, err := encodeValue(ne.ValorAnterior)
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "encoding valor_anterior")
	}
	novo, err := encodeValue(ne.ValorNovo)
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "encoding valor_novo")
	}

	var id int64
	err = repo.db.GetContext(ctx, &id,
		`INSERT INTO historico_alteracoes
		   (tipo_alteracao, tabela, registro_id, grupo_id, dia, slot_id,
		    valor_anterior, valor_novo, campo_alterado, usuario_id, timestamp, detalhes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		string(ne.TipoAlteracao), ne.Tabela,
		null.Int64FromPtr(ne.RegistroID), null.StringFromPtr(ne.GrupoID),
		null.StringFromPtr(ne.Dia), null.IntFromPtr(ne.SlotID),
		anterior, novo, null.StringFromPtr(ne.CampoAlterado),
		ne.UsuarioID, ne.Timestamp, nullStr(ne.Detalhes))
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "inserting audit entry")
	}
	return repo.getEntry(ctx, id)
}

func (repo *auditRepository) getEntry(ctx context.Context, id int64) (audit.Entry, error) {
	var row auditRow
	err := repo.db.GetContext(ctx, &row, selectEntries+` WHERE h.id = $1`, id)
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "getting audit entry")
	}
	return row.toEntry()
}

const selectEntries = `
SELECT h.*, u.nome AS usuario_nome, u.perfil AS usuario_perfil
FROM historico_alteracoes h
JOIN usuarios u ON u.id = h.usuario_id`

func (repo *auditRepository) FilterEntries(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var (
		conds []string
		args  []interface{}
	)
	cond := func(clause string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(clause, len(args)))
	}

	if filter.GrupoID != "" {
		cond("h.grupo_id = $%d", filter.GrupoID)
	}
	if filter.Dia != "" {
		cond("h.dia = $%d", filter.Dia)
	}
	if filter.SlotID != 0 {
		cond("h.slot_id = $%d", filter.SlotID)
	}
	if filter.UsuarioID != 0 {
		cond("h.usuario_id = $%d", filter.UsuarioID)
	}
	if filter.TipoAlteracao != "" {
		cond("h.tipo_alteracao = $%d", string(filter.TipoAlteracao))
	}
	if !filter.DataInicio.IsZero() {
		cond("h.timestamp >= $%d", filter.DataInicio)
	}
	if !filter.DataFim.IsZero() {
		cond("h.timestamp <= $%d", filter.DataFim)
	}

	query := selectEntries
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY h.timestamp DESC, h.id DESC"
	if filter.Limite > 0 {
		args = append(args, filter.Limite)
		query += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	var rows []auditRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying audit entries")
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (repo *auditRepository) EntryStats(ctx context.Context, filter audit.StatsFilter) (audit.Stats, error) {
	var (
		conds []string
		args  []interface{}
	)
	if !filter.DataInicio.IsZero() {
		args = append(args, filter.DataInicio)
		conds = append(conds, fmt.Sprintf("h.timestamp >= $%d", len(args)))
	}
	if !filter.DataFim.IsZero() {
		args = append(args, filter.DataFim)
		conds = append(conds, fmt.Sprintf("h.timestamp <= $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var totals struct {
		Total    int       `db:"total"`
		Usuarios int       `db:"usuarios"`
		Grupos   int       `db:"grupos"`
		Primeira null.Time `db:"primeira"`
		Ultima   null.Time `db:"ultima"`
	}
	err := repo.db.GetContext(ctx, &totals,
		`SELECT COUNT(*) AS total,
		        COUNT(DISTINCT h.usuario_id) AS usuarios,
		        COUNT(DISTINCT h.grupo_id) AS grupos,
		        MIN(h.timestamp) AS primeira,
		        MAX(h.timestamp) AS ultima
		 FROM historico_alteracoes h`+where, args...)
	if err != nil {
		return audit.Stats{}, errors.Wrap(err, "querying audit totals")
	}

	stats := audit.Stats{
		TotalAlteracoes: totals.Total,
		TotalUsuarios:   totals.Usuarios,
		TotalGrupos:     totals.Grupos,
		PorTipo:         []audit.KindCount{},
		PorUsuario:      []audit.UserCount{},
	}
	if totals.Primeira.Valid {
		primeira := totals.Primeira.Time.UTC()
		stats.PrimeiraAlteracao = &primeira
	}
	if totals.Ultima.Valid {
		ultima := totals.Ultima.Time.UTC()
		stats.UltimaAlteracao = &ultima
	}

	var kinds []struct {
		Tipo       string `db:"tipo_alteracao"`
		Quantidade int    `db:"quantidade"`
	}
	err = repo.db.SelectContext(ctx, &kinds,
		`SELECT h.tipo_alteracao, COUNT(*) AS quantidade
		 FROM historico_alteracoes h`+where+`
		 GROUP BY h.tipo_alteracao
		 ORDER BY quantidade DESC`, args...)
	if err != nil {
		return audit.Stats{}, errors.Wrap(err, "querying audit kind counts")
	}
	for _, k := range kinds {
		stats.PorTipo = append(stats.PorTipo, audit.KindCount{
			Tipo:       audit.Kind(k.Tipo),
			Quantidade: k.Quantidade,
		})
	}

	var users []struct {
		Nome       string `db:"nome"`
		Perfil     string `db:"perfil"`
		Quantidade int    `db:"quantidade"`
	}
	err = repo.db.SelectContext(ctx, &users,
		`SELECT u.nome, u.perfil, COUNT(*) AS quantidade
		 FROM historico_alteracoes h
		 JOIN usuarios u ON u.id = h.usuario_id`+where+`
		 GROUP BY u.id, u.nome, u.perfil
		 ORDER BY quantidade DESC, u.nome
		 LIMIT 10`, args...)
	if err != nil {
		return audit.Stats{}, errors.Wrap(err, "querying audit user counts")
	}
	for _, u := range users {
		stats.PorUsuario = append(stats.PorUsuario, audit.UserCount{
			Nome:       u.Nome,
			Perfil:     user.Role(u.Perfil),
			Quantidade: u.Quantidade,
		})
	}
	return stats, nil
}

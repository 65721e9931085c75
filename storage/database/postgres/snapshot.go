package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/snapshot"
	"github.com/escolaware/horario/core/user"
)

type snapshotRow struct {
	ID            uuid.UUID   `db:"id"`
	Nome          string      `db:"nome"`
	Descricao     null.String `db:"descricao"`
	Dados         []byte      `db:"dados"`
	UsuarioID     int         `db:"usuario_id"`
	CriadoEm      time.Time   `db:"criado_em"`
	UsuarioNome   string      `db:"usuario_nome"`
	UsuarioPerfil string      `db:"usuario_perfil"`
}

func (r snapshotRow) toSnapshot() (snapshot.Snapshot, error) {
	snap := snapshot.Snapshot{
		ID:   r.ID,
		Nome: r.Nome,
		Usuario: user.Ref{
			ID:     r.UsuarioID,
			Nome:   r.UsuarioNome,
			Perfil: user.Role(r.UsuarioPerfil),
		},
		CriadoEm: r.CriadoEm.UTC(),
	}
	if r.Descricao.Valid {
		snap.Descricao = &r.Descricao.String
	}
	if err := json.Unmarshal(r.Dados, &snap.Dados); err != nil {
		return snapshot.Snapshot{}, errors.Wrap(err, "decoding snapshot payload")
	}
	return snap, nil
}

type snapshotRepository struct {
	db *sqlx.DB
}

var _ snapshot.Repository = (*snapshotRepository)(nil) // interface compliance check

func NewSnapshotRepository(db *sqlx.DB) snapshot.Repository {
	return &snapshotRepository{db: db}
}

const selectSnapshots = `
SELECT s.*, u.nome AS usuario_nome, u.perfil AS usuario_perfil
FROM snapshots s
JOIN usuarios u ON u.id = s.usuario_id`

func (repo *snapshotRepository) CreateSnapshot(ctx context.Context, snap snapshot.Snapshot) (snapshot.Snapshot, error) {
	dados, err := json.Marshal(snap.Dados)
	if err != nil {
		return snapshot.Snapshot{}, errors.Wrap(err, "encoding snapshot payload")
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, nome, descricao, dados, usuario_id, criado_em)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.ID, snap.Nome, null.StringFromPtr(snap.Descricao), dados, snap.Usuario.ID, snap.CriadoEm)
	if err != nil {
		return snapshot.Snapshot{}, errors.Wrap(err, "inserting snapshot")
	}
	return repo.GetSnapshot(ctx, snap.ID)
}

func (repo *snapshotRepository) ListSnapshots(ctx context.Context, limit int) ([]snapshot.Snapshot, error) {
	var rows []snapshotRow
	err := repo.db.SelectContext(ctx, &rows,
		selectSnapshots+`
		ORDER BY s.criado_em DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying snapshots")
	}

	snaps := make([]snapshot.Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := row.toSnapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (repo *snapshotRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (snapshot.Snapshot, error) {
	var row snapshotRow
	err := repo.db.GetContext(ctx, &row, selectSnapshots+` WHERE s.id = $1`, id)
	if err == sql.ErrNoRows {
		return snapshot.Snapshot{}, snapshot.ErrNotFound
	}
	if err != nil {
		return snapshot.Snapshot{}, errors.Wrap(err, "getting snapshot")
	}
	return row.toSnapshot()
}

func (repo *snapshotRepository) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting snapshot")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return snapshot.ErrNotFound
	}
	return nil
}

// ReplaceTimetable wipes horarios and reinserts every non-empty lesson from the
// payload inside one transaction.
func (repo *snapshotRepository) ReplaceTimetable(ctx context.Context, tt schedule.Timetable, usuarioID int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning replace transaction")
	}
	defer tx.Rollback() // no-op after commit

	if _, err = tx.ExecContext(ctx, `DELETE FROM horarios`); err != nil {
		return errors.Wrap(err, "clearing horarios")
	}

	const insert = `
		INSERT INTO horarios (grupo_id, dia, slot_id, disciplina, professor, turma, usuario_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for grupoID, horario := range tt {
		for dia, aulas := range horario {
			for slotID, aula := range aulas {
				if aula == nil || aula.IsEmpty() {
					continue
				}
				_, err = tx.ExecContext(ctx, insert, grupoID, dia, slotID,
					nullStr(aula.Disciplina), nullStr(aula.Professor), nullStr(aula.Turma), usuarioID)
				if err != nil {
					return errors.Wrap(err, "inserting restored slot")
				}
			}
		}
	}
	return errors.Wrap(tx.Commit(), "committing replace transaction")
}

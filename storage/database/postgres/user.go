package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/escolaware/horario/core/user"
)

type userRow struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	Nome         string    `db:"nome"`
	SenhaHash    []byte    `db:"senha_hash"`
	Perfil       string    `db:"perfil"`
	CriadoEm     time.Time `db:"criado_em"`
	AtualizadoEm time.Time `db:"atualizado_em"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		Nome:         r.Nome,
		Perfil:       user.Role(r.Perfil),
		PasswordHash: r.SenhaHash,
		CriadoEm:     r.CriadoEm.UTC(),
		AtualizadoEm: r.AtualizadoEm.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM usuarios WHERE email = $1)`, email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.GetContext(ctx, &usr.ID,
		`INSERT INTO usuarios (email, nome, senha_hash, perfil, criado_em, atualizado_em)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		usr.Email, usr.Nome, usr.PasswordHash, string(usr.Perfil), usr.CriadoEm, usr.AtualizadoEm)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM usuarios WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user by id")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM usuarios WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE usuarios
		 SET email = $1, nome = $2, senha_hash = $3, perfil = $4, atualizado_em = $5
		 WHERE id = $6`,
		usr.Email, usr.Nome, usr.PasswordHash, string(usr.Perfil), usr.AtualizadoEm, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

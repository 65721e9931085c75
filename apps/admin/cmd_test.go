package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/escolaware/horario/core/user"
	dummydb "github.com/escolaware/horario/storage/database/dummy"
)

func setup(t *testing.T) (*commandLine, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewUserRepository(db)
	cli := &commandLine{
		db:     &sqlx.DB{},
		usrSvc: user.NewService(repo),
	}
	return cli, repo
}

func createUser(t *testing.T, cli *commandLine, email, nome, perfil, pwd string) user.User {
	t.Helper()

	usr, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		Email:  email,
		Nome:   nome,
		Senha:  pwd,
		Perfil: perfil,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create requires a NAME argument"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "turmas", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, repo := setup(t)

	usr := createUser(t, cli, "awe@escola.br", "Awe", "professor", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@escola.br"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@escola.br"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := repo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, repo := setup(t)
	ctx := context.Background()

	existing := createUser(t, cli, "dir@escola.br", "Diretora", "direcao", "mdr")

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3nha"), nil }

	t.Run("creates a new user", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-email", "novo@escola.br", "-nome", "Novo", "-perfil", "goe"}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}
		usr, err := repo.GetUserByEmail(ctx, "novo@escola.br")
		if err != nil {
			t.Fatalf("GetUserByEmail() failed: %v", err)
		}
		if usr.Perfil != user.RoleGOE {
			t.Errorf("perfil = %s; want goe", usr.Perfil)
		}
		if err = usr.CheckPassword("s3nha"); err != nil {
			t.Error("password was not set")
		}
	})

	t.Run("updates an existing user", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-email", existing.Email, "-nome", "Vice", "-perfil", "vice_direcao"}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}
		usr, err := repo.GetUserByID(ctx, existing.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if usr.Perfil != user.RoleViceDirecao {
			t.Errorf("perfil = %s; want vice_direcao", usr.Perfil)
		}
		if usr.Nome != "Vice" {
			t.Errorf("nome = %s; want Vice", usr.Nome)
		}
	})

	t.Run("rejects an unknown profile", func(t *testing.T) {
		err := cli.run([]string{"admin", "adduser", "-email", "x@escola.br", "-nome", "X", "-perfil", "rei"})
		if err != user.ErrInvalidRole {
			t.Errorf("cli.run() error = %v, want ErrInvalidRole", err)
		}
	})
}

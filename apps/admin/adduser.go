package main

import (
	"context"
	"time"

	"github.com/escolaware/horario/core"
	"github.com/escolaware/horario/core/user"
)

// addUser updates or creates a user.User.
func (cli *commandLine) addUser(email, nome, perfil, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	role, err := user.ParseRole(perfil)
	if err != nil {
		return err
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Email:  email,
			Nome:   nome,
			Senha:  pwd,
			Perfil: perfil,
		})
		return err
	}

	usr.Nome = core.CleanString(nome)
	usr.Perfil = role
	usr.AtualizadoEm = time.Now().UTC()
	if _, err = cli.usrSvc.SetPassword(ctx, usr, pwd); err != nil {
		return err
	}
	return nil
}

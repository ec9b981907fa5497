package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/girgism/khedma/core"
	"github.com/girgism/khedma/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		if usr, err = cli.usrRepo.GetUserByEmail(email); err != nil {
			if err != user.ErrNotFound {
				return err
			}
			usr = user.User{
				ID:        uuid.New().String(),
				Username:  uname,
				Email:     email,
				CreatedAt: now,
			}
		}
	}

	if name != "" {
		usr.Name = name
	}
	if isAdmin {
		usr.Roles = []string{user.RoleGeneralSecretary}
	}
	active := true
	usr.IsActive = &active
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.CreatedAt.Equal(now) {
		_, err = cli.usrRepo.CreateUser(usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(usr)
	}
	return err
}

package kvdb

import (
	"github.com/girgism/khedma/core/user"
)

const usersKey = "users"

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) load() ([]user.User, error) {
	var users []user.User
	if err := repo.db.Load(usersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	users, err := repo.load()
	if err != nil {
		return err
	}

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}

	for _, usr := range users {
		if _, ok := excluded[usr.ID]; ok {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	var users []user.User
	err := repo.db.Update(usersKey, &users, func() error {
		users = append(users, usr)
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	return repo.load()
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	users, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	users, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	users, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	users, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.Username == username || usr.Email == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	var users []user.User
	err := repo.db.Update(usersKey, &users, func() error {
		for i := range users {
			if users[i].ID == usr.ID {
				users[i] = usr
				return nil
			}
		}
		return user.ErrNotFound
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	var users []user.User
	return repo.db.Update(usersKey, &users, func() error {
		kept := users[:0]
		for _, usr := range users {
			if _, ok := drop[usr.ID]; !ok {
				kept = append(kept, usr)
			}
		}
		users = kept
		return nil
	})
}

package user

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/girgism/khedma/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByUsername(username string) (User, error)
		GetUserByEmail(email string) (User, error)
		GetUserByUsernameOrEmail(username string) (User, error)
		UpdateUser(user User) (User, error)
		DeleteUsersByID(ids ...string) error
	}

	Service interface {
		CheckUniqueness(uname, email string, exclUsers ...User) error
		Create(nu NewUser) (User, error)
		QueryAll() ([]User, error)
		Filter(filter QueryFilter) ([]User, error)
		GetByID(id string) (User, error)
		GetByUsername(uname string) (User, error)
		GetByEmail(email string) (User, error)
		GetByUsernameOrEmail(uname string) (User, error)
		Update(id string, uu UpdateUser) (User, error)
		Delete(ids ...string) error
		SetLastLogin(usr User) (User, error)
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetUserPassword) (User, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *service) CheckUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	active := true
	usr := User{
		ID:         uuid.New().String(),
		Name:       nu.Name,
		Username:   nu.Username,
		Email:      nu.Email,
		NationalID: nu.NationalID,
		IsActive:   &active,
		Roles:      nu.Roles,
		LevelIDs:   nu.LevelIDs,
		ServantID:  nu.ServantID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *service) Filter(filter QueryFilter) ([]User, error) {
	users, err := svc.repo.QueryAllUsers()
	if err != nil {
		return nil, err
	}
	matched := make([]User, 0, len(users))
	for _, usr := range users {
		if filter.Match(usr) {
			matched = append(matched, usr)
		}
	}
	return matched, nil
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByUsername(uname string) (User, error) {
	return svc.repo.GetUserByUsername(core.CleanString(uname, true /* lower */))
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *service) GetByUsernameOrEmail(uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
}

func (svc *service) Update(id string, uu UpdateUser) (User, error) {
	origUsr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}

	usr := origUsr
	usr.Name = uu.Name
	usr.Username = uu.Username
	usr.Email = uu.Email
	if uu.NationalID != "" {
		usr.NationalID = uu.NationalID
	}
	if uu.IsActive != nil {
		usr.IsActive = uu.IsActive
	}
	if uu.Roles != nil {
		usr.Roles = uu.Roles
	}
	if uu.LevelIDs != nil {
		usr.LevelIDs = uu.LevelIDs
	}
	if uu.ServantID != "" {
		usr.ServantID = uu.ServantID
	}
	if uu.ProfileComplete != nil {
		usr.ProfileComplete = *uu.ProfileComplete
	}
	usr.UpdatedAt = time.Now().UTC()

	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(usr)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteUsersByID(ids...)
}

func (svc *service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			UID   string
			Token string
		}{EncodeUID(usr), token},
		BodyStr: fmt.Sprintf(
			"Follow this link to reset your password: %s/password-reset/%s/%s",
			core.Conf.FrontendBaseURL, EncodeUID(usr), token,
		),
	})
}

func (svc *service) ResetPassword(rp ResetUserPassword) (User, error) {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return User{}, core.NewValidationError(err)
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

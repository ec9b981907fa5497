package notification

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/girgism/khedma/core"
	"github.com/girgism/khedma/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(n Notification) (Notification, error)
		QueryAllNotifications() ([]Notification, error)
		GetNotificationByID(id string) (Notification, error)
		UpdateNotification(n Notification) (Notification, error)
		DeleteNotificationsByID(ids ...string) error
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, usrRepo: usrRepo, mailSvc: mailSvc}
}

func (svc *Service) Create(nn NewNotification, createdBy string) (Notification, error) {
	n := Notification{
		ID:        uuid.New().String(),
		Title:     nn.Title,
		Body:      nn.Body,
		Roles:     nn.Roles,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	n, err := svc.repo.CreateNotification(n)
	if err != nil {
		return Notification{}, err
	}
	if nn.Email {
		svc.email(n)
	}
	return n, nil
}

// QueryForUser returns the notifications addressed to usr's roles, newest
// first.
func (svc *Service) QueryForUser(usr user.User) ([]Notification, error) {
	all, err := svc.repo.QueryAllNotifications()
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(all))
	for _, n := range all {
		if addressedTo(n, usr) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (svc *Service) MarkRead(id, userID string) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(id)
	if err != nil {
		return Notification{}, err
	}
	n.MarkRead(userID)
	return svc.repo.UpdateNotification(n)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteNotificationsByID(ids...)
}

func addressedTo(n Notification, usr user.User) bool {
	if len(n.Roles) == 0 {
		return true
	}
	for _, role := range n.Roles {
		if usr.HasRole(role) {
			return true
		}
	}
	return false
}

// email sends the notification to every active user holding one of its roles.
func (svc *Service) email(n Notification) {
	users, err := svc.usrRepo.QueryAllUsers()
	if err != nil {
		return
	}
	var to []mail.Address
	for _, usr := range users {
		if usr.Email == "" || (usr.IsActive != nil && !*usr.IsActive) {
			continue
		}
		if addressedTo(n, usr) {
			to = append(to, mail.Address{Name: usr.Name, Address: usr.Email})
		}
	}
	if len(to) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		Bcc:     to,
		To:      []mail.Address{core.Conf.DefaultFromEmail()},
		Subject: n.Title,
		BodyStr: n.Body,
	})
}

package kvdb

import (
	"github.com/girgism/khedma/core/notification"
)

const notificationsKey = "notifications"

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(n notification.Notification) (notification.Notification, error) {
	var notifs []notification.Notification
	err := repo.db.Update(notificationsKey, &notifs, func() error {
		notifs = append(notifs, n)
		return nil
	})
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (repo *notificationRepository) QueryAllNotifications() ([]notification.Notification, error) {
	var notifs []notification.Notification
	if err := repo.db.Load(notificationsKey, &notifs); err != nil {
		return nil, err
	}
	return notifs, nil
}

func (repo *notificationRepository) GetNotificationByID(id string) (notification.Notification, error) {
	notifs, err := repo.QueryAllNotifications()
	if err != nil {
		return notification.Notification{}, err
	}
	for _, n := range notifs {
		if n.ID == id {
			return n, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) UpdateNotification(n notification.Notification) (notification.Notification, error) {
	var notifs []notification.Notification
	err := repo.db.Update(notificationsKey, &notifs, func() error {
		for i := range notifs {
			if notifs[i].ID == n.ID {
				notifs[i] = n
				return nil
			}
		}
		return notification.ErrNotFound
	})
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (repo *notificationRepository) DeleteNotificationsByID(ids ...string) error {
	drop := idSet(ids)
	var notifs []notification.Notification
	return repo.db.Update(notificationsKey, &notifs, func() error {
		kept := notifs[:0]
		for _, n := range notifs {
			if _, ok := drop[n.ID]; !ok {
				kept = append(kept, n)
			}
		}
		notifs = kept
		return nil
	})
}

package memdb

import (
	"sort"

	"github.com/girgism/khedma/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) QueryAllNotifications() ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]notification.Notification, 0, len(repo.db.table))
	for _, n := range repo.db.table {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (repo *notificationRepository) GetNotificationByID(id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) UpdateNotification(n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[n.ID]; !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) DeleteNotificationsByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

package notification

import (
	"time"

	"github.com/girgism/khedma/core"
)

// Notification is an announcement pushed to users of given roles. It lives in
// the shared store like every other collection; delivery by email is
// best-effort on top.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Roles     []string  `json:"roles,omitempty"` // empty means everyone
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ReadBy    []string  `json:"read_by,omitempty"` // user ids
}

func (n *Notification) MarkRead(userID string) {
	for _, id := range n.ReadBy {
		if id == userID {
			return
		}
	}
	n.ReadBy = append(n.ReadBy, userID)
}

// NewNotification contains information needed to create a new Notification.
type NewNotification struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Roles []string `json:"roles" validate:"omitempty,allroles"`
	Email bool     `json:"email"` // also deliver by email
}

func (nn *NewNotification) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.Body = core.CleanString(nn.Body)
	return core.Validate.Struct(nn)
}

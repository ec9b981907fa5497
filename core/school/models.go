package school

import (
	"time"

	"github.com/girgism/khedma/core"
)

type (
	// Contact is a named phone contact attached to levels and subgroups.
	Contact struct {
		Name  string `json:"name"`
		Phone string `json:"phone,omitempty"`
	}

	// Division is an optional boys/girls sub-structure within a Level.
	Division struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Gender string `json:"gender,omitempty"` // "boys" | "girls"
	}

	// Subgroup is a named cluster of classes with its own contact and logo.
	Subgroup struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Contact  Contact  `json:"contact"`
		Logo     string   `json:"logo,omitempty"`
		ClassIDs []string `json:"class_ids,omitempty"`
	}

	// Level is a broad age/education stage (e.g. primary, preparatory).
	// A level owns zero or more Classes.
	Level struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		Sections   []string   `json:"sections,omitempty"` // ordered named sub-sections
		Secretary  Contact    `json:"secretary"`
		Secretary2 Contact    `json:"secretary2"`
		Divisions  []Division `json:"divisions,omitempty"`
		Subgroups  []Subgroup `json:"subgroups,omitempty"`
		CreatedAt  time.Time  `json:"created_at"`
		UpdatedAt  time.Time  `json:"updated_at"`
	}

	// CardStyle holds the display styling of printable class cards.
	CardStyle struct {
		Color     string `json:"color,omitempty"`
		TextColor string `json:"text_color,omitempty"`
		Logo      string `json:"logo,omitempty"`
	}

	// Class is a roster group within a level, the unit of attendance-taking.
	// SupervisorName and ServantNames are free text matched against
	// Servant.Name by value, not by id; non-matches are tolerated and treated
	// as "unknown servant" (see ResolveServantByName).
	Class struct {
		ID             string    `json:"id"`
		LevelID        string    `json:"level_id"`
		Grade          string    `json:"grade"`
		Name           string    `json:"name"`
		SupervisorName string    `json:"supervisor_name,omitempty"`
		ServantNames   []string  `json:"servant_names,omitempty"`
		Card           CardStyle `json:"card"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
	}

	// Child is owned entirely by a Class.
	Child struct {
		ID            string    `json:"id"`
		ClassID       string    `json:"class_id"`
		Name          string    `json:"name"`
		Gender        string    `json:"gender,omitempty"`
		BirthDate     string    `json:"birth_date,omitempty"` // YYYY-MM-DD
		Address       string    `json:"address,omitempty"`
		Phone         string    `json:"phone,omitempty"`
		GuardianName  string    `json:"guardian_name,omitempty"`
		GuardianPhone string    `json:"guardian_phone,omitempty"`
		School        string    `json:"school,omitempty"`
		Image         string    `json:"image,omitempty"`
		Notes         string    `json:"notes,omitempty"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}

	// ServiceAssignment describes one place a servant serves.
	ServiceAssignment struct {
		LevelID string `json:"level_id"`
		ClassID string `json:"class_id"`
	}

	// Servant is a staff/volunteer record, distinct from a login-capable User.
	Servant struct {
		ID               string              `json:"id"`
		Name             string              `json:"name"`
		Phone            string              `json:"phone,omitempty"`
		Phone2           string              `json:"phone2,omitempty"`
		Email            string              `json:"email,omitempty"`
		Address          string              `json:"address,omitempty"`
		NationalID       string              `json:"national_id,omitempty"`
		BirthDate        string              `json:"birth_date,omitempty"` // YYYY-MM-DD
		Job              string              `json:"job,omitempty"`
		ConfessionFather string              `json:"confession_father,omitempty"`
		Image            string              `json:"image,omitempty"`
		Notes            string              `json:"notes,omitempty"`
		Assignments      []ServiceAssignment `json:"service_assignments,omitempty"`
		CreatedAt        time.Time           `json:"created_at"`
		UpdatedAt        time.Time           `json:"updated_at"`
	}
)

// Restricted projects a servant down to the field subset exposed to
// level-scoped users; contact/financial/personal detail fields are stripped.
func (s Servant) Restricted() Servant {
	return Servant{
		ID:          s.ID,
		Name:        s.Name,
		Phone:       s.Phone,
		Phone2:      s.Phone2,
		Image:       s.Image,
		Assignments: s.Assignments,
	}
}

// NewLevel contains information needed to create a new Level.
type NewLevel struct {
	Name       string     `json:"name" validate:"required"`
	Sections   []string   `json:"sections"`
	Secretary  Contact    `json:"secretary"`
	Secretary2 Contact    `json:"secretary2"`
	Divisions  []Division `json:"divisions"`
	Subgroups  []Subgroup `json:"subgroups"`
}

func (nl *NewLevel) Validate() error {
	nl.Name = core.CleanString(nl.Name)
	return core.Validate.Struct(nl)
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	LevelID        string    `json:"level_id" validate:"required"`
	Grade          string    `json:"grade" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	SupervisorName string    `json:"supervisor_name"`
	ServantNames   []string  `json:"servant_names"`
	Card           CardStyle `json:"card"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Grade = core.CleanString(nc.Grade)
	return core.Validate.Struct(nc)
}

// NewChild contains information needed to create a new Child.
type NewChild struct {
	ClassID       string `json:"class_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Gender        string `json:"gender" validate:"omitempty,oneof=boy girl"`
	BirthDate     string `json:"birth_date" validate:"omitempty,date_"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	School        string `json:"school"`
	Image         string `json:"image"`
	Notes         string `json:"notes"`
}

func (nc *NewChild) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// NewServant contains information needed to create a new Servant.
type NewServant struct {
	Name             string              `json:"name" validate:"required"`
	Phone            string              `json:"phone"`
	Phone2           string              `json:"phone2"`
	Email            string              `json:"email" validate:"omitempty,email"`
	Address          string              `json:"address"`
	NationalID       string              `json:"national_id" validate:"omitempty,numeric"`
	BirthDate        string              `json:"birth_date" validate:"omitempty,date_"`
	Job              string              `json:"job"`
	ConfessionFather string              `json:"confession_father"`
	Image            string              `json:"image"`
	Notes            string              `json:"notes"`
	Assignments      []ServiceAssignment `json:"service_assignments"`
}

func (ns *NewServant) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return core.Validate.Struct(ns)
}

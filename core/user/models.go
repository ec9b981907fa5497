package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/girgism/khedma/core"
)

// Roles
const (
	// Full access
	RoleGeneralSecretary = "general_secretary"
	RolePriest           = "priest"

	// Level-scoped
	RoleAssistantSecretary = "assistant_secretary"
	RoleSecretary          = "secretary"
	RoleLevelSecretary     = "level_secretary"

	// Class-scoped
	RoleClassSupervisor = "class_supervisor"
	RoleServant         = "servant"
)

var (
	FullAccessRoles  = []string{RoleGeneralSecretary, RolePriest}
	LevelScopedRoles = []string{RoleSecretary, RoleAssistantSecretary, RoleLevelSecretary}
	ClassScopedRoles = []string{RoleClassSupervisor, RoleServant}
	AllRoles         = getAllRoles()

	rolePriorities = map[string]int{
		// Full access: 30 - 21
		RoleGeneralSecretary: 30,
		RolePriest:           29,

		// Level-scoped: 20 - 11
		RoleAssistantSecretary: 20,
		RoleSecretary:          19,
		RoleLevelSecretary:     18,

		// Class-scoped: 10 - 1
		RoleClassSupervisor: 10,
		RoleServant:         1,
	}

	Roles = []Role{
		{Name: "Servant", Value: RoleServant},
		{Name: "Class Supervisor", Value: RoleClassSupervisor},
		{Name: "Level Secretary", Value: RoleLevelSecretary},
		{Name: "Secretary", Value: RoleSecretary},
		{Name: "Assistant Secretary", Value: RoleAssistantSecretary},
		{Name: "Priest", Value: RolePriest},
		{Name: "General Secretary", Value: RoleGeneralSecretary},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 7)
	all = append(all, FullAccessRoles...)
	all = append(all, LevelScopedRoles...)
	all = append(all, ClassScopedRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"` // display name; matched against Servant/Class names for class-scoped access
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	NationalID      string    `json:"national_id,omitempty"`
	IsActive        *bool     `json:"is_active"`
	Roles           []string  `json:"roles"`
	LevelIDs        []string  `json:"level_ids,omitempty"` // levels a level-scoped user may see
	ServantID       string    `json:"servant_id,omitempty"`
	ProfileComplete bool      `json:"profile_complete"`
	PasswordHash    []byte    `json:"-"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
	LastLogin       time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) hasAnyRole(roles []string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// HasFullAccess reports whether the user sees every entity unfiltered.
func (u *User) HasFullAccess() bool {
	return u.hasAnyRole(FullAccessRoles)
}

// HasLevelScope reports whether the user holds a level-scoped role AND is
// actually assigned levels; a secretary with no levels sees nothing through
// this tier.
func (u *User) HasLevelScope() bool {
	return u.hasAnyRole(LevelScopedRoles) && len(u.LevelIDs) > 0
}

// HasClassScope reports whether the user holds a class-scoped role. Which
// classes (if any) they see is resolved by name matching at projection time.
func (u *User) HasClassScope() bool {
	return u.hasAnyRole(ClassScopedRoles)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	NationalID      string   `json:"national_id" validate:"omitempty,numeric"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"required,min=1,allroles"`
	LevelIDs        []string `json:"level_ids"`
	ServantID       string   `json:"servant_id"`
}

func (nu *NewUser) Validate(svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	NationalID      string   `json:"national_id" validate:"omitempty,numeric"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,min=1,allroles"`
	LevelIDs        []string `json:"level_ids"`
	ServantID       string   `json:"servant_id"`
	ProfileComplete *bool    `json:"profile_complete"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, svc Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

// QueryFilter narrows QueryAll results; fields compose with AND.
type QueryFilter struct {
	Search   string   `query:"search"` // case-insensitive match on Name, Username or Email
	Roles    []string `query:"role"`
	IsActive *bool    `query:"is_active"`
}

func (qf QueryFilter) Match(usr User) bool {
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(usr.Name), s) ||
			strings.Contains(strings.ToLower(usr.Username), s) ||
			strings.Contains(strings.ToLower(usr.Email), s)) {
			return false
		}
	}
	if len(qf.Roles) > 0 {
		var found bool
		for _, role := range qf.Roles {
			if usr.HasRole(role) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.IsActive != nil {
		active := usr.IsActive == nil || *usr.IsActive
		if active != *qf.IsActive {
			return false
		}
	}
	return true
}

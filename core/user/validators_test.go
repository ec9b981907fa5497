package user

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/girgism/khedma/core"
)

func hasFieldTag(err error, field, tag string) bool {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	for _, vErr := range vErrs {
		if vErr.Field() == field && vErr.Tag() == tag {
			return true
		}
	}
	return false
}

func Test_userStructValidation_levelIDs(t *testing.T) {
	newUser := func(roles, levelIDs []string) *NewUser {
		return &NewUser{
			Name:            "Mai Adel",
			Username:        "maiadel",
			Email:           "mai@test.cd",
			Password:        "Str0ng&Pass",
			PasswordConfirm: "Str0ng&Pass",
			Roles:           roles,
			LevelIDs:        levelIDs,
		}
	}

	tests := []struct {
		name     string
		obj      interface{}
		wantFlag bool
	}{
		{
			name:     "level-scoped role without levels",
			obj:      newUser([]string{RoleSecretary}, nil),
			wantFlag: true,
		},
		{
			name:     "level-scoped role with levels",
			obj:      newUser([]string{RoleLevelSecretary}, []string{"lvl-prim"}),
			wantFlag: false,
		},
		{
			name:     "class-scoped role without levels",
			obj:      newUser([]string{RoleServant}, nil),
			wantFlag: false,
		},
		{
			name:     "update to level-scoped role without levels",
			obj:      &UpdateUser{Roles: []string{RoleAssistantSecretary}},
			wantFlag: true,
		},
		{
			name:     "update leaving roles untouched",
			obj:      &UpdateUser{Name: "Mai Adel"},
			wantFlag: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.Validate.Struct(tt.obj)
			if got := hasFieldTag(err, "level_ids", levelsRequiredTag); got != tt.wantFlag {
				t.Errorf("levels_required reported = %v, want %v (err = %v)", got, tt.wantFlag, err)
			}
		})
	}
}

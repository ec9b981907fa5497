package user

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/girgism/khedma/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	usernameOrEmailTag  = "username_or_email"
	usernameOrEmailText = "one of username or email is required"

	levelsRequiredTag  = "levels_required"
	levelsRequiredText = "level-scoped roles require at least one level"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(allRolesTag, allRolesText)

	core.Validate.RegisterStructValidation(userStructValidation, NewUser{})
	core.Validate.RegisterStructValidation(userStructValidation, UpdateUser{})
	core.RegisterCustomTranslation(usernameOrEmailTag, usernameOrEmailText)
	core.RegisterCustomTranslation(levelsRequiredTag, levelsRequiredText)
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	if roles, ok := fl.Field().Interface().([]string); ok {
		sort.Strings(AllRoles)
		for _, role := range roles {
			idx := sort.SearchStrings(AllRoles, role)
			if idx >= len(AllRoles) || AllRoles[idx] != role {
				return false
			}
		}
		return true
	}
	return false
}

// userStructValidation does struct level validation on NewUser and UpdateUser structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validateUsernameAndEmail(usr.Username, usr.Email, sl)
		validateLevelIDs(usr.Roles, usr.LevelIDs, sl)
		validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
	case UpdateUser:
		if len(usr.Roles) > 0 {
			validateLevelIDs(usr.Roles, usr.LevelIDs, sl)
		}
		if usr.Password != "" {
			validatePassword(usr.Password, usr.Name, usr.Username, usr.Email, sl)
		}
	}
}

// validateUsernameAndEmail checks that one of Username or Email is provided
func validateUsernameAndEmail(uname, email string, sl validator.StructLevel) {
	if len(uname) == 0 && len(email) == 0 {
		sl.ReportError(uname, "username", "Username", usernameOrEmailTag, "")
		sl.ReportError(email, "email", "Email", usernameOrEmailTag, "")
	}
}

// validateLevelIDs checks that level-scoped roles come with at least one level
func validateLevelIDs(roles, levelIDs []string, sl validator.StructLevel) {
	if len(levelIDs) > 0 {
		return
	}
	for _, role := range roles {
		for _, scoped := range LevelScopedRoles {
			if role == scoped {
				sl.ReportError(levelIDs, "level_ids", "LevelIDs", levelsRequiredTag, "")
				return
			}
		}
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
func validatePassword(pwd, name, uname, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount         int
		hasUpper, hasLower bool
	)

	// - minLen: 8
	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range []rune(pwd) {
		// - no whitespace
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	if !(hasUpper && hasLower && digitCount > 0 && specialRegex.MatchString(pwd)) {
		reportErr(pwdComplexityTag)
		return
	}

	// - no user attrs similarity
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim ||
		getRatio(pwd, uname) >= pwdMaxSim ||
		getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}
}

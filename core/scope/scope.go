// Package scope derives the subset of school entities a given user is
// authorized to see. Projection is a pure function over the full snapshot:
// it never errors and never mutates its inputs; missing references simply
// yield empty results.
package scope

import (
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/user"
)

// Snapshot bundles the four role-filtered collections. All other top-level
// state (users, attendance records, point settings, notifications) passes to
// the UI unfiltered.
type Snapshot struct {
	Levels   []school.Level   `json:"levels"`
	Classes  []school.Class   `json:"classes"`
	Children []school.Child   `json:"children"`
	Servants []school.Servant `json:"servants"`
}

// Project returns the snapshot restricted to what usr may see.
//
// Access tiers, in order:
//   - nil user, general secretary or priest: everything, unchanged.
//   - level-scoped roles with assigned levels: those levels, their classes and
//     children.
//   - class-scoped roles: classes referencing the user's display name (exact,
//     case-sensitive), plus the owning levels.
//
// A user holding roles in both tiers unions the level/class contributions,
// but servant-list shaping follows the first matching branch only: class
// scope shapes servants to the user's own record even when level scope would
// have granted a wider list. That asymmetry follows the rule order and is
// intentional.
func Project(usr *user.User, snap Snapshot) Snapshot {
	if usr == nil || usr.HasFullAccess() {
		return snap
	}

	visibleLevelIDs := make(map[string]struct{})
	visibleClassIDs := make(map[string]struct{})

	// level-based access
	if usr.HasLevelScope() {
		for _, id := range usr.LevelIDs {
			visibleLevelIDs[id] = struct{}{}
		}
		for _, cls := range snap.Classes {
			if _, ok := visibleLevelIDs[cls.LevelID]; ok {
				visibleClassIDs[cls.ID] = struct{}{}
			}
		}
	}

	// class-based access, matched by display name
	if usr.HasClassScope() {
		for _, cls := range snap.Classes {
			if school.ClassReferencesName(cls, usr.Name) {
				visibleClassIDs[cls.ID] = struct{}{}
				visibleLevelIDs[cls.LevelID] = struct{}{}
			}
		}
	}

	out := Snapshot{
		Levels:   make([]school.Level, 0, len(visibleLevelIDs)),
		Classes:  make([]school.Class, 0, len(visibleClassIDs)),
		Children: []school.Child{},
		Servants: []school.Servant{},
	}
	for _, lvl := range snap.Levels {
		if _, ok := visibleLevelIDs[lvl.ID]; ok {
			out.Levels = append(out.Levels, lvl)
		}
	}
	for _, cls := range snap.Classes {
		if _, ok := visibleClassIDs[cls.ID]; ok {
			out.Classes = append(out.Classes, cls)
		}
	}
	for _, chd := range snap.Children {
		if _, ok := visibleClassIDs[chd.ClassID]; ok {
			out.Children = append(out.Children, chd)
		}
	}

	out.Servants = shapeServants(usr, snap.Servants, out.Classes)
	return out
}

// shapeServants applies the tiered servant-list rules: class-scoped users get
// only their own servant record (or none), level-scoped users get the records
// referenced by their visible classes projected down to the restricted field
// subset, everyone else gets nothing.
func shapeServants(usr *user.User, servants []school.Servant, visibleClasses []school.Class) []school.Servant {
	switch {
	case usr.HasClassScope():
		if own, ok := ownServant(usr, servants); ok {
			return []school.Servant{own}
		}
		return []school.Servant{}

	case usr.HasLevelScope():
		out := make([]school.Servant, 0)
		for _, name := range school.ReferencedServantNames(visibleClasses) {
			if srv, ok := school.ResolveServantByName(servants, name); ok {
				out = append(out, srv.Restricted())
			}
		}
		return out
	}
	return []school.Servant{}
}

// ownServant finds the user's servant record, preferring the explicit id link
// over the name match.
func ownServant(usr *user.User, servants []school.Servant) (school.Servant, bool) {
	if usr.ServantID != "" {
		for _, srv := range servants {
			if srv.ID == usr.ServantID {
				return srv, true
			}
		}
	}
	return school.ResolveServantByName(servants, usr.Name)
}

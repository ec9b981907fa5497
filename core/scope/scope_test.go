package scope

import (
	"testing"

	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/user"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Levels: []school.Level{
			{ID: "lvl-prim", Name: "Primary"},
			{ID: "lvl-prep", Name: "Preparatory"},
		},
		Classes: []school.Class{
			{ID: "cls-p1", LevelID: "lvl-prim", Grade: "1", Name: "Grade 1", SupervisorName: "Mina Adel", ServantNames: []string{"Mariam Nabil"}},
			{ID: "cls-p2", LevelID: "lvl-prim", Grade: "2", Name: "Grade 2", SupervisorName: "Kirollos Samir"},
			{ID: "cls-j1", LevelID: "lvl-prep", Grade: "1", Name: "Prep 1", ServantNames: []string{"Mina Adel"}},
		},
		Children: []school.Child{
			{ID: "chd-1", ClassID: "cls-p1", Name: "Youssef"},
			{ID: "chd-2", ClassID: "cls-p2", Name: "Demiana"},
			{ID: "chd-3", ClassID: "cls-j1", Name: "Abanoub"},
		},
		Servants: []school.Servant{
			{ID: "srv-1", Name: "Mina Adel", Phone: "0100", NationalID: "298...", Notes: "private"},
			{ID: "srv-2", Name: "Mariam Nabil", Phone: "0111"},
			{ID: "srv-3", Name: "Kirollos Samir", Phone: "0122"},
		},
	}
}

func classIDs(classes []school.Class) map[string]bool {
	ids := make(map[string]bool, len(classes))
	for _, cls := range classes {
		ids[cls.ID] = true
	}
	return ids
}

func TestProject_fullAccess(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name string
		usr  *user.User
	}{
		{name: "nil user"},
		{name: "general secretary", usr: &user.User{ID: "u1", Roles: []string{user.RoleGeneralSecretary}}},
		{name: "priest", usr: &user.User{ID: "u2", Roles: []string{user.RolePriest}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.usr, snap)
			if len(got.Levels) != len(snap.Levels) ||
				len(got.Classes) != len(snap.Classes) ||
				len(got.Children) != len(snap.Children) ||
				len(got.Servants) != len(snap.Servants) {
				t.Errorf("Project() trimmed a full-access snapshot: %+v", got)
			}
		})
	}
}

func TestProject_levelScope(t *testing.T) {
	snap := testSnapshot()
	usr := &user.User{
		ID:       "u3",
		Name:     "Sara Fawzy",
		Roles:    []string{user.RoleLevelSecretary},
		LevelIDs: []string{"lvl-prim"},
	}

	got := Project(usr, snap)

	if len(got.Levels) != 1 || got.Levels[0].ID != "lvl-prim" {
		t.Errorf("Project() levels = %+v, want lvl-prim only", got.Levels)
	}
	ids := classIDs(got.Classes)
	if len(ids) != 2 || !ids["cls-p1"] || !ids["cls-p2"] {
		t.Errorf("Project() classes = %+v, want cls-p1 and cls-p2", got.Classes)
	}
	for _, chd := range got.Children {
		if !ids[chd.ClassID] {
			t.Errorf("Project() child %s belongs to invisible class %s", chd.ID, chd.ClassID)
		}
	}
	if len(got.Children) != 2 {
		t.Errorf("Project() children count = %d, want 2", len(got.Children))
	}

	// servants referenced by the visible classes, trimmed to the restricted
	// field subset
	if len(got.Servants) != 3 {
		t.Fatalf("Project() servants count = %d, want 3", len(got.Servants))
	}
	for _, srv := range got.Servants {
		if srv.NationalID != "" || srv.Notes != "" {
			t.Errorf("Project() leaked restricted servant fields: %+v", srv)
		}
		if srv.Name == "" || srv.ID == "" {
			t.Errorf("Project() dropped allowed servant fields: %+v", srv)
		}
	}
}

func TestProject_levelScope_withoutAssignedLevels(t *testing.T) {
	snap := testSnapshot()
	usr := &user.User{ID: "u4", Name: "Sara Fawzy", Roles: []string{user.RoleSecretary}}

	got := Project(usr, snap)
	if len(got.Levels) != 0 || len(got.Classes) != 0 || len(got.Children) != 0 || len(got.Servants) != 0 {
		t.Errorf("Project() = %+v, want empty snapshot for secretary without levels", got)
	}
}

func TestProject_classScope(t *testing.T) {
	snap := testSnapshot()
	usr := &user.User{ID: "u5", Name: "Mina Adel", Roles: []string{user.RoleClassSupervisor}}

	got := Project(usr, snap)

	// name is referenced by cls-p1 (supervisor) and cls-j1 (servant)
	ids := classIDs(got.Classes)
	if len(ids) != 2 || !ids["cls-p1"] || !ids["cls-j1"] {
		t.Errorf("Project() classes = %+v, want cls-p1 and cls-j1", got.Classes)
	}
	if len(got.Levels) != 2 {
		t.Errorf("Project() levels count = %d, want both owning levels", len(got.Levels))
	}
	if len(got.Children) != 2 {
		t.Errorf("Project() children count = %d, want 2", len(got.Children))
	}

	// class scope shapes servants to the user's own record, unrestricted
	if len(got.Servants) != 1 || got.Servants[0].ID != "srv-1" {
		t.Fatalf("Project() servants = %+v, want own record only", got.Servants)
	}
	if got.Servants[0].NationalID == "" {
		t.Error("Project() own servant record should not be field-restricted")
	}
}

func TestProject_classScope_caseSensitiveNameMatch(t *testing.T) {
	snap := testSnapshot()
	usr := &user.User{ID: "u6", Name: "mina adel", Roles: []string{user.RoleServant}}

	got := Project(usr, snap)
	if len(got.Classes) != 0 {
		t.Errorf("Project() matched classes despite case mismatch: %+v", got.Classes)
	}
	if len(got.Servants) != 0 {
		t.Errorf("Project() matched servants despite case mismatch: %+v", got.Servants)
	}
}

func TestProject_classScope_servantIDLinkPreferred(t *testing.T) {
	snap := testSnapshot()
	// display name matches nothing but the explicit link wins
	usr := &user.User{ID: "u7", Name: "Renamed User", ServantID: "srv-2", Roles: []string{user.RoleServant}}

	got := Project(usr, snap)
	if len(got.Servants) != 1 || got.Servants[0].ID != "srv-2" {
		t.Errorf("Project() servants = %+v, want srv-2 via explicit link", got.Servants)
	}
}

func TestProject_mixedTiers(t *testing.T) {
	snap := testSnapshot()
	// level access to lvl-prep unions with class access by name (cls-p1);
	// servant shaping follows the class branch only.
	usr := &user.User{
		ID:       "u8",
		Name:     "Mariam Nabil",
		Roles:    []string{user.RoleLevelSecretary, user.RoleServant},
		LevelIDs: []string{"lvl-prep"},
	}

	got := Project(usr, snap)

	ids := classIDs(got.Classes)
	if len(ids) != 2 || !ids["cls-j1"] || !ids["cls-p1"] {
		t.Errorf("Project() classes = %+v, want union of both tiers", got.Classes)
	}
	if len(got.Servants) != 1 || got.Servants[0].Name != "Mariam Nabil" {
		t.Errorf("Project() servants = %+v, want own record only (class branch wins)", got.Servants)
	}
}

func TestProjector_memoization(t *testing.T) {
	snap := testSnapshot()
	usr := &user.User{ID: "u9", Name: "Mina Adel", Roles: []string{user.RoleClassSupervisor}}

	p := NewProjector()

	first := p.Project(usr, snap, 1)
	// mutate the snapshot; same (user, rev) pair must return the memoized result
	snap.Classes = nil
	second := p.Project(usr, snap, 1)
	if len(second.Classes) != len(first.Classes) {
		t.Errorf("Projector.Project() recomputed despite unchanged (user, rev)")
	}

	// revision bump recomputes
	third := p.Project(usr, snap, 2)
	if len(third.Classes) != 0 {
		t.Errorf("Projector.Project() did not recompute on revision bump: %+v", third.Classes)
	}

	// user change recomputes
	snap = testSnapshot()
	other := &user.User{ID: "u10", Roles: []string{user.RoleGeneralSecretary}}
	fourth := p.Project(other, snap, 2)
	if len(fourth.Classes) != len(snap.Classes) {
		t.Errorf("Projector.Project() did not recompute on user change")
	}

	// explicit invalidation
	p.Invalidate()
	fifth := p.Project(other, Snapshot{}, 2)
	if len(fifth.Classes) != 0 {
		t.Errorf("Projector.Project() returned stale result after Invalidate()")
	}
}

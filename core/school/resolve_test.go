package school

import (
	"reflect"
	"testing"
)

func TestResolveServantByName(t *testing.T) {
	servants := []Servant{
		{ID: "srv-1", Name: "Mina Adel"},
		{ID: "srv-2", Name: "Mariam Nabil"},
	}

	tests := []struct {
		name   string
		lookup string
		wantID string
		wantOK bool
	}{
		{name: "exact match", lookup: "Mina Adel", wantID: "srv-1", wantOK: true},
		{name: "case mismatch", lookup: "mina adel"},
		{name: "no normalization of spaces", lookup: " Mina Adel"},
		{name: "empty name never matches", lookup: ""},
		{name: "unknown", lookup: "Nobody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ok := ResolveServantByName(servants, tt.lookup)
			if ok != tt.wantOK {
				t.Fatalf("ResolveServantByName() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && srv.ID != tt.wantID {
				t.Errorf("ResolveServantByName() = %s, want %s", srv.ID, tt.wantID)
			}
		})
	}
}

func TestClassReferencesName(t *testing.T) {
	cls := Class{
		ID:             "cls-1",
		SupervisorName: "Mina Adel",
		ServantNames:   []string{"Mariam Nabil", "Kirollos Samir"},
	}

	if !ClassReferencesName(cls, "Mina Adel") {
		t.Error("ClassReferencesName() missed the supervisor")
	}
	if !ClassReferencesName(cls, "Kirollos Samir") {
		t.Error("ClassReferencesName() missed a servant")
	}
	if ClassReferencesName(cls, "mina adel") {
		t.Error("ClassReferencesName() matched despite case mismatch")
	}
	if ClassReferencesName(cls, "") {
		t.Error("ClassReferencesName() matched the empty name")
	}
}

func TestReferencedServantNames(t *testing.T) {
	classes := []Class{
		{SupervisorName: "Mina Adel", ServantNames: []string{"Mariam Nabil"}},
		{SupervisorName: "Mariam Nabil", ServantNames: []string{"Kirollos Samir", ""}},
	}

	got := ReferencedServantNames(classes)
	want := []string{"Mina Adel", "Mariam Nabil", "Kirollos Samir"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReferencedServantNames() = %v, want %v (first-seen order, deduped)", got, want)
	}
}

func TestServant_Restricted(t *testing.T) {
	srv := Servant{
		ID:          "srv-1",
		Name:        "Mina Adel",
		Phone:       "0100",
		Phone2:      "0111",
		Image:       "mina.jpg",
		NationalID:  "298",
		Address:     "somewhere",
		Notes:       "private",
		Assignments: []ServiceAssignment{{LevelID: "lvl-1", ClassID: "cls-1"}},
	}

	got := srv.Restricted()
	want := Servant{
		ID:          "srv-1",
		Name:        "Mina Adel",
		Phone:       "0100",
		Phone2:      "0111",
		Image:       "mina.jpg",
		Assignments: []ServiceAssignment{{LevelID: "lvl-1", ClassID: "cls-1"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Restricted() = %+v, want %+v", got, want)
	}
}

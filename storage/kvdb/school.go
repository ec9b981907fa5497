package kvdb

import (
	"github.com/girgism/khedma/core/school"
)

const (
	levelsKey   = "levels"
	classesKey  = "classes"
	childrenKey = "children"
	servantsKey = "servants"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

// Levels

func (repo *schoolRepository) CreateLevel(lvl school.Level) (school.Level, error) {
	var levels []school.Level
	err := repo.db.Update(levelsKey, &levels, func() error {
		levels = append(levels, lvl)
		return nil
	})
	if err != nil {
		return school.Level{}, err
	}
	return lvl, nil
}

func (repo *schoolRepository) QueryAllLevels() ([]school.Level, error) {
	var levels []school.Level
	if err := repo.db.Load(levelsKey, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func (repo *schoolRepository) GetLevelByID(id string) (school.Level, error) {
	levels, err := repo.QueryAllLevels()
	if err != nil {
		return school.Level{}, err
	}
	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	return school.Level{}, school.ErrLevelNotFound
}

func (repo *schoolRepository) UpdateLevel(lvl school.Level) (school.Level, error) {
	var levels []school.Level
	err := repo.db.Update(levelsKey, &levels, func() error {
		for i := range levels {
			if levels[i].ID == lvl.ID {
				levels[i] = lvl
				return nil
			}
		}
		return school.ErrLevelNotFound
	})
	if err != nil {
		return school.Level{}, err
	}
	return lvl, nil
}

func (repo *schoolRepository) DeleteLevelsByID(ids ...string) error {
	drop := idSet(ids)
	var levels []school.Level
	return repo.db.Update(levelsKey, &levels, func() error {
		kept := levels[:0]
		for _, lvl := range levels {
			if _, ok := drop[lvl.ID]; !ok {
				kept = append(kept, lvl)
			}
		}
		levels = kept
		return nil
	})
}

// Classes

func (repo *schoolRepository) CreateClass(cls school.Class) (school.Class, error) {
	var classes []school.Class
	err := repo.db.Update(classesKey, &classes, func() error {
		classes = append(classes, cls)
		return nil
	})
	if err != nil {
		return school.Class{}, err
	}
	return cls, nil
}

func (repo *schoolRepository) QueryAllClasses() ([]school.Class, error) {
	var classes []school.Class
	if err := repo.db.Load(classesKey, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (repo *schoolRepository) QueryClassesByLevelID(levelID string) ([]school.Class, error) {
	classes, err := repo.QueryAllClasses()
	if err != nil {
		return nil, err
	}
	matched := make([]school.Class, 0)
	for _, cls := range classes {
		if cls.LevelID == levelID {
			matched = append(matched, cls)
		}
	}
	return matched, nil
}

func (repo *schoolRepository) GetClassByID(id string) (school.Class, error) {
	classes, err := repo.QueryAllClasses()
	if err != nil {
		return school.Class{}, err
	}
	for _, cls := range classes {
		if cls.ID == id {
			return cls, nil
		}
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) UpdateClass(cls school.Class) (school.Class, error) {
	var classes []school.Class
	err := repo.db.Update(classesKey, &classes, func() error {
		for i := range classes {
			if classes[i].ID == cls.ID {
				classes[i] = cls
				return nil
			}
		}
		return school.ErrClassNotFound
	})
	if err != nil {
		return school.Class{}, err
	}
	return cls, nil
}

func (repo *schoolRepository) DeleteClassesByID(ids ...string) error {
	drop := idSet(ids)
	var classes []school.Class
	return repo.db.Update(classesKey, &classes, func() error {
		kept := classes[:0]
		for _, cls := range classes {
			if _, ok := drop[cls.ID]; !ok {
				kept = append(kept, cls)
			}
		}
		classes = kept
		return nil
	})
}

// Children

func (repo *schoolRepository) CreateChild(chd school.Child) (school.Child, error) {
	var children []school.Child
	err := repo.db.Update(childrenKey, &children, func() error {
		children = append(children, chd)
		return nil
	})
	if err != nil {
		return school.Child{}, err
	}
	return chd, nil
}

func (repo *schoolRepository) QueryAllChildren() ([]school.Child, error) {
	var children []school.Child
	if err := repo.db.Load(childrenKey, &children); err != nil {
		return nil, err
	}
	return children, nil
}

func (repo *schoolRepository) QueryChildrenByClassID(classID string) ([]school.Child, error) {
	children, err := repo.QueryAllChildren()
	if err != nil {
		return nil, err
	}
	matched := make([]school.Child, 0)
	for _, chd := range children {
		if chd.ClassID == classID {
			matched = append(matched, chd)
		}
	}
	return matched, nil
}

func (repo *schoolRepository) GetChildByID(id string) (school.Child, error) {
	children, err := repo.QueryAllChildren()
	if err != nil {
		return school.Child{}, err
	}
	for _, chd := range children {
		if chd.ID == id {
			return chd, nil
		}
	}
	return school.Child{}, school.ErrChildNotFound
}

func (repo *schoolRepository) UpdateChild(chd school.Child) (school.Child, error) {
	var children []school.Child
	err := repo.db.Update(childrenKey, &children, func() error {
		for i := range children {
			if children[i].ID == chd.ID {
				children[i] = chd
				return nil
			}
		}
		return school.ErrChildNotFound
	})
	if err != nil {
		return school.Child{}, err
	}
	return chd, nil
}

func (repo *schoolRepository) DeleteChildrenByID(ids ...string) error {
	drop := idSet(ids)
	var children []school.Child
	return repo.db.Update(childrenKey, &children, func() error {
		kept := children[:0]
		for _, chd := range children {
			if _, ok := drop[chd.ID]; !ok {
				kept = append(kept, chd)
			}
		}
		children = kept
		return nil
	})
}

// Servants

func (repo *schoolRepository) CreateServant(srv school.Servant) (school.Servant, error) {
	var servants []school.Servant
	err := repo.db.Update(servantsKey, &servants, func() error {
		servants = append(servants, srv)
		return nil
	})
	if err != nil {
		return school.Servant{}, err
	}
	return srv, nil
}

func (repo *schoolRepository) QueryAllServants() ([]school.Servant, error) {
	var servants []school.Servant
	if err := repo.db.Load(servantsKey, &servants); err != nil {
		return nil, err
	}
	return servants, nil
}

func (repo *schoolRepository) GetServantByID(id string) (school.Servant, error) {
	servants, err := repo.QueryAllServants()
	if err != nil {
		return school.Servant{}, err
	}
	for _, srv := range servants {
		if srv.ID == id {
			return srv, nil
		}
	}
	return school.Servant{}, school.ErrServantNotFound
}

func (repo *schoolRepository) UpdateServant(srv school.Servant) (school.Servant, error) {
	var servants []school.Servant
	err := repo.db.Update(servantsKey, &servants, func() error {
		for i := range servants {
			if servants[i].ID == srv.ID {
				servants[i] = srv
				return nil
			}
		}
		return school.ErrServantNotFound
	})
	if err != nil {
		return school.Servant{}, err
	}
	return srv, nil
}

func (repo *schoolRepository) DeleteServantsByID(ids ...string) error {
	drop := idSet(ids)
	var servants []school.Servant
	return repo.db.Update(servantsKey, &servants, func() error {
		kept := servants[:0]
		for _, srv := range servants {
			if _, ok := drop[srv.ID]; !ok {
				kept = append(kept, srv)
			}
		}
		servants = kept
		return nil
	})
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

package memdb

import (
	"sort"

	"github.com/girgism/khedma/core/school"
)

type schoolRepository struct {
	levels   *levelTable
	classes  *classTable
	children *childTable
	servants *servantTable
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{
		levels:   db.level,
		classes:  db.class,
		children: db.child,
		servants: db.servant,
	}
}

// Levels

func (repo *schoolRepository) CreateLevel(lvl school.Level) (school.Level, error) {
	repo.levels.Lock()
	defer repo.levels.Unlock()
	repo.levels.table[lvl.ID] = &lvl
	return lvl, nil
}

func (repo *schoolRepository) QueryAllLevels() ([]school.Level, error) {
	repo.levels.RLock()
	defer repo.levels.RUnlock()

	levels := make([]school.Level, 0, len(repo.levels.table))
	for _, lvl := range repo.levels.table {
		levels = append(levels, *lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].CreatedAt.Before(levels[j].CreatedAt) })
	return levels, nil
}

func (repo *schoolRepository) GetLevelByID(id string) (school.Level, error) {
	repo.levels.RLock()
	defer repo.levels.RUnlock()

	if lvl, ok := repo.levels.table[id]; ok {
		return *lvl, nil
	}
	return school.Level{}, school.ErrLevelNotFound
}

func (repo *schoolRepository) UpdateLevel(lvl school.Level) (school.Level, error) {
	repo.levels.Lock()
	defer repo.levels.Unlock()

	if _, ok := repo.levels.table[lvl.ID]; !ok {
		return school.Level{}, school.ErrLevelNotFound
	}
	repo.levels.table[lvl.ID] = &lvl
	return lvl, nil
}

func (repo *schoolRepository) DeleteLevelsByID(ids ...string) error {
	repo.levels.Lock()
	defer repo.levels.Unlock()

	for _, id := range ids {
		delete(repo.levels.table, id)
	}
	return nil
}

// Classes

func (repo *schoolRepository) CreateClass(cls school.Class) (school.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) queryClasses() []school.Class {
	classes := make([]school.Class, 0, len(repo.classes.table))
	for _, cls := range repo.classes.table {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].CreatedAt.Before(classes[j].CreatedAt) })
	return classes
}

func (repo *schoolRepository) QueryAllClasses() ([]school.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()
	return repo.queryClasses(), nil
}

func (repo *schoolRepository) QueryClassesByLevelID(levelID string) ([]school.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	classes := make([]school.Class, 0)
	for _, cls := range repo.queryClasses() {
		if cls.LevelID == levelID {
			classes = append(classes, cls)
		}
	}
	return classes, nil
}

func (repo *schoolRepository) GetClassByID(id string) (school.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	if cls, ok := repo.classes.table[id]; ok {
		return *cls, nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) UpdateClass(cls school.Class) (school.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	if _, ok := repo.classes.table[cls.ID]; !ok {
		return school.Class{}, school.ErrClassNotFound
	}
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) DeleteClassesByID(ids ...string) error {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	for _, id := range ids {
		delete(repo.classes.table, id)
	}
	return nil
}

// Children

func (repo *schoolRepository) CreateChild(chd school.Child) (school.Child, error) {
	repo.children.Lock()
	defer repo.children.Unlock()
	repo.children.table[chd.ID] = &chd
	return chd, nil
}

func (repo *schoolRepository) queryChildren() []school.Child {
	children := make([]school.Child, 0, len(repo.children.table))
	for _, chd := range repo.children.table {
		children = append(children, *chd)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children
}

func (repo *schoolRepository) QueryAllChildren() ([]school.Child, error) {
	repo.children.RLock()
	defer repo.children.RUnlock()
	return repo.queryChildren(), nil
}

func (repo *schoolRepository) QueryChildrenByClassID(classID string) ([]school.Child, error) {
	repo.children.RLock()
	defer repo.children.RUnlock()

	children := make([]school.Child, 0)
	for _, chd := range repo.queryChildren() {
		if chd.ClassID == classID {
			children = append(children, chd)
		}
	}
	return children, nil
}

func (repo *schoolRepository) GetChildByID(id string) (school.Child, error) {
	repo.children.RLock()
	defer repo.children.RUnlock()

	if chd, ok := repo.children.table[id]; ok {
		return *chd, nil
	}
	return school.Child{}, school.ErrChildNotFound
}

func (repo *schoolRepository) UpdateChild(chd school.Child) (school.Child, error) {
	repo.children.Lock()
	defer repo.children.Unlock()

	if _, ok := repo.children.table[chd.ID]; !ok {
		return school.Child{}, school.ErrChildNotFound
	}
	repo.children.table[chd.ID] = &chd
	return chd, nil
}

func (repo *schoolRepository) DeleteChildrenByID(ids ...string) error {
	repo.children.Lock()
	defer repo.children.Unlock()

	for _, id := range ids {
		delete(repo.children.table, id)
	}
	return nil
}

// Servants

func (repo *schoolRepository) CreateServant(srv school.Servant) (school.Servant, error) {
	repo.servants.Lock()
	defer repo.servants.Unlock()
	repo.servants.table[srv.ID] = &srv
	return srv, nil
}

func (repo *schoolRepository) QueryAllServants() ([]school.Servant, error) {
	repo.servants.RLock()
	defer repo.servants.RUnlock()

	servants := make([]school.Servant, 0, len(repo.servants.table))
	for _, srv := range repo.servants.table {
		servants = append(servants, *srv)
	}
	sort.Slice(servants, func(i, j int) bool { return servants[i].Name < servants[j].Name })
	return servants, nil
}

func (repo *schoolRepository) GetServantByID(id string) (school.Servant, error) {
	repo.servants.RLock()
	defer repo.servants.RUnlock()

	if srv, ok := repo.servants.table[id]; ok {
		return *srv, nil
	}
	return school.Servant{}, school.ErrServantNotFound
}

func (repo *schoolRepository) UpdateServant(srv school.Servant) (school.Servant, error) {
	repo.servants.Lock()
	defer repo.servants.Unlock()

	if _, ok := repo.servants.table[srv.ID]; !ok {
		return school.Servant{}, school.ErrServantNotFound
	}
	repo.servants.table[srv.ID] = &srv
	return srv, nil
}

func (repo *schoolRepository) DeleteServantsByID(ids ...string) error {
	repo.servants.Lock()
	defer repo.servants.Unlock()

	for _, id := range ids {
		delete(repo.servants.table, id)
	}
	return nil
}

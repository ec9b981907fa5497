package school

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrLevelNotFound   = errors.New("level not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrChildNotFound   = errors.New("child not found")
	ErrServantNotFound = errors.New("servant not found")
)

type (
	Repository interface {
		CreateLevel(lvl Level) (Level, error)
		QueryAllLevels() ([]Level, error)
		GetLevelByID(id string) (Level, error)
		UpdateLevel(lvl Level) (Level, error)
		DeleteLevelsByID(ids ...string) error

		CreateClass(cls Class) (Class, error)
		QueryAllClasses() ([]Class, error)
		QueryClassesByLevelID(levelID string) ([]Class, error)
		GetClassByID(id string) (Class, error)
		UpdateClass(cls Class) (Class, error)
		DeleteClassesByID(ids ...string) error

		CreateChild(chd Child) (Child, error)
		QueryAllChildren() ([]Child, error)
		QueryChildrenByClassID(classID string) ([]Child, error)
		GetChildByID(id string) (Child, error)
		UpdateChild(chd Child) (Child, error)
		DeleteChildrenByID(ids ...string) error

		CreateServant(srv Servant) (Servant, error)
		QueryAllServants() ([]Servant, error)
		GetServantByID(id string) (Servant, error)
		UpdateServant(srv Servant) (Servant, error)
		DeleteServantsByID(ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Levels

func (svc *Service) CreateLevel(nl NewLevel) (Level, error) {
	now := time.Now().UTC()
	lvl := Level{
		ID:         uuid.New().String(),
		Name:       nl.Name,
		Sections:   nl.Sections,
		Secretary:  nl.Secretary,
		Secretary2: nl.Secretary2,
		Divisions:  nl.Divisions,
		Subgroups:  nl.Subgroups,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateLevel(lvl)
}

func (svc *Service) QueryAllLevels() ([]Level, error) { return svc.repo.QueryAllLevels() }

func (svc *Service) GetLevel(id string) (Level, error) { return svc.repo.GetLevelByID(id) }

func (svc *Service) UpdateLevel(lvl Level) (Level, error) {
	lvl.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLevel(lvl)
}

// DeleteLevels removes levels along with their classes and those classes'
// children (a level owns its classes, a class owns its children).
func (svc *Service) DeleteLevels(ids ...string) error {
	for _, id := range ids {
		classes, err := svc.repo.QueryClassesByLevelID(id)
		if err != nil {
			return err
		}
		clsIDs := make([]string, 0, len(classes))
		for _, cls := range classes {
			clsIDs = append(clsIDs, cls.ID)
		}
		if err := svc.DeleteClasses(clsIDs...); err != nil {
			return err
		}
	}
	return svc.repo.DeleteLevelsByID(ids...)
}

// Classes

func (svc *Service) CreateClass(nc NewClass) (Class, error) {
	if _, err := svc.repo.GetLevelByID(nc.LevelID); err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	cls := Class{
		ID:             uuid.New().String(),
		LevelID:        nc.LevelID,
		Grade:          nc.Grade,
		Name:           nc.Name,
		SupervisorName: nc.SupervisorName,
		ServantNames:   nc.ServantNames,
		Card:           nc.Card,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateClass(cls)
}

func (svc *Service) QueryAllClasses() ([]Class, error) { return svc.repo.QueryAllClasses() }

func (svc *Service) GetClass(id string) (Class, error) { return svc.repo.GetClassByID(id) }

func (svc *Service) UpdateClass(cls Class) (Class, error) {
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(cls)
}

// DeleteClasses removes classes along with their children.
func (svc *Service) DeleteClasses(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		children, err := svc.repo.QueryChildrenByClassID(id)
		if err != nil {
			return err
		}
		chdIDs := make([]string, 0, len(children))
		for _, chd := range children {
			chdIDs = append(chdIDs, chd.ID)
		}
		if len(chdIDs) > 0 {
			if err := svc.repo.DeleteChildrenByID(chdIDs...); err != nil {
				return err
			}
		}
	}
	return svc.repo.DeleteClassesByID(ids...)
}

// Children

func (svc *Service) CreateChild(nc NewChild) (Child, error) {
	if _, err := svc.repo.GetClassByID(nc.ClassID); err != nil {
		return Child{}, err
	}
	now := time.Now().UTC()
	chd := Child{
		ID:            uuid.New().String(),
		ClassID:       nc.ClassID,
		Name:          nc.Name,
		Gender:        nc.Gender,
		BirthDate:     nc.BirthDate,
		Address:       nc.Address,
		Phone:         nc.Phone,
		GuardianName:  nc.GuardianName,
		GuardianPhone: nc.GuardianPhone,
		School:        nc.School,
		Image:         nc.Image,
		Notes:         nc.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateChild(chd)
}

func (svc *Service) QueryAllChildren() ([]Child, error) { return svc.repo.QueryAllChildren() }

func (svc *Service) QueryChildrenByClass(classID string) ([]Child, error) {
	return svc.repo.QueryChildrenByClassID(classID)
}

func (svc *Service) GetChild(id string) (Child, error) { return svc.repo.GetChildByID(id) }

func (svc *Service) UpdateChild(chd Child) (Child, error) {
	chd.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(chd)
}

func (svc *Service) DeleteChildren(ids ...string) error {
	return svc.repo.DeleteChildrenByID(ids...)
}

// Servants

func (svc *Service) CreateServant(ns NewServant) (Servant, error) {
	now := time.Now().UTC()
	srv := Servant{
		ID:               uuid.New().String(),
		Name:             ns.Name,
		Phone:            ns.Phone,
		Phone2:           ns.Phone2,
		Email:            ns.Email,
		Address:          ns.Address,
		NationalID:       ns.NationalID,
		BirthDate:        ns.BirthDate,
		Job:              ns.Job,
		ConfessionFather: ns.ConfessionFather,
		Image:            ns.Image,
		Notes:            ns.Notes,
		Assignments:      ns.Assignments,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateServant(srv)
}

func (svc *Service) QueryAllServants() ([]Servant, error) { return svc.repo.QueryAllServants() }

func (svc *Service) GetServant(id string) (Servant, error) { return svc.repo.GetServantByID(id) }

func (svc *Service) UpdateServant(srv Servant) (Servant, error) {
	srv.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateServant(srv)
}

func (svc *Service) DeleteServants(ids ...string) error {
	return svc.repo.DeleteServantsByID(ids...)
}

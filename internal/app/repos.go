package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	Organization repos.OrganizationRepo
	Person       repos.PersonRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Organization: repos.NewOrganizationRepo(db, log),
		Person:       repos.NewPersonRepo(db, log),
	}
}

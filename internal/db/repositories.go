package db

import "gorm.io/gorm"

type Repositories struct {
	Users     *UserRepository
	Companies *CompanyRepository
	Records   *RecordRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(database),
		Companies: NewCompanyRepository(database),
		Records:   NewRecordRepository(database),
	}
}

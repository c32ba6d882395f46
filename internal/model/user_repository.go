package model

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (u *UserRepository) Create(user *User) error {
	if res := u.DB.Create(user); res.Error != nil {
		log.Printf("error creating user: %s\n", res.Error)
		return res.Error
	}
	return nil
}

func (u *UserRepository) FindByUuid(uuid string) (*User, error) {
	return u.find("uuid", uuid)
}

func (u *UserRepository) FindByEmail(email string) (*User, error) {
	return u.find("email", email)
}

// FindByUuids resolves a batch of recipient ids in one query.
func (u *UserRepository) FindByUuids(uuids []string) ([]User, error) {
	var users []User

	res := u.DB.Where("uuid IN ?", uuids).Find(&users)
	if res.Error != nil {
		log.Printf("error resolving recipients: %s\n", res.Error)
		return nil, res.Error
	}
	return users, nil
}

// DepartmentByEmail maps every recipient email of a company to its
// department, for participation breakdowns.
func (u *UserRepository) DepartmentByEmail(companyID string) (map[string]string, error) {
	var users []User

	res := u.DB.Select("email", "department").Where("company_id = ?", companyID).Find(&users)
	if res.Error != nil {
		log.Printf("error loading departments: %s\n", res.Error)
		return nil, res.Error
	}

	departments := make(map[string]string, len(users))
	for _, user := range users {
		departments[user.Email] = user.Department
	}
	return departments, nil
}

func (u *UserRepository) DeleteByCompany(companyID string) error {
	res := u.DB.Where("company_id = ?", companyID).Delete(&User{})
	if res.Error != nil {
		log.Printf("error purging users for company %s: %s\n", companyID, res.Error)
	}
	return res.Error
}

func (u *UserRepository) find(field, value string) (*User, error) {
	var user User

	res := u.DB.Where(fmt.Sprintf("%s = ?", field), value).First(&user)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, res.Error
}

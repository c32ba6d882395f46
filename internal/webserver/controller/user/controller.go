package user

import (
	"github.com/sondeolabs/convoca/internal/model"
)

type usersRepository interface {
	Create(user *model.User) error
}

type Config struct {
	MinPasswordLength int
}

type Controller struct {
	repository usersRepository
	config     Config
}

func NewController(repository usersRepository, cfg Config) *Controller {
	return &Controller{
		repository: repository,
		config:     cfg,
	}
}

package auth

import (
	"time"

	"github.com/sondeolabs/convoca/internal/model"
)

type usersRepository interface {
	FindByEmail(email string) (*model.User, error)
}

type Config struct {
	Secret         []byte
	SessionTimeout time.Duration
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

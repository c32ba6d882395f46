package webserver

import (
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/participation"
	"github.com/sondeolabs/convoca/internal/webserver/controller/auth"
	"github.com/sondeolabs/convoca/internal/webserver/controller/campaign"
	"github.com/sondeolabs/convoca/internal/webserver/controller/company"
	"github.com/sondeolabs/convoca/internal/webserver/controller/invitation"
	"github.com/sondeolabs/convoca/internal/webserver/controller/job"
	"github.com/sondeolabs/convoca/internal/webserver/controller/user"
	"gorm.io/gorm"
)

type Controllers struct {
	Auth        *auth.Controller
	Users       *user.Controller
	Invitations *invitation.Controller
	Campaigns   *campaign.Controller
	Companies   *company.Controller
	Jobs        *job.Controller
}

func SetupControllers(cfg Config, db *gorm.DB, composer *notification.Composer) Controllers {
	usersRepository := &model.UserRepository{DB: db}
	invitationsRepository := &model.InvitationRepository{DB: db}
	campaignsRepository := &model.CampaignRepository{DB: db}
	queueRepository := &model.NotificationRepository{DB: db}

	authCfg := auth.Config{
		Secret:         cfg.JwtSecret,
		SessionTimeout: cfg.SessionTimeout,
	}

	invitationsCfg := invitation.Config{
		BaseURL: cfg.BaseURL,
	}

	usersCfg := user.Config{
		MinPasswordLength: cfg.MinPasswordLength,
	}

	tracker := participation.NewTracker(invitationsRepository, usersRepository)

	return Controllers{
		Auth:        auth.NewController(usersRepository, authCfg),
		Users:       user.NewController(usersRepository, usersCfg),
		Invitations: invitation.NewController(invitationsRepository, usersRepository, campaignsRepository, queueRepository, composer, invitationsCfg),
		Campaigns:   campaign.NewController(campaignsRepository, invitationsRepository, tracker),
		Companies:   company.NewController(company.Collections(invitationsRepository, queueRepository, campaignsRepository, usersRepository)),
		Jobs:        job.NewController(queueRepository),
	}
}

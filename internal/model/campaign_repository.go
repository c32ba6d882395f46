package model

import (
	"errors"
	"log"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	DB *gorm.DB
}

func (c *CampaignRepository) Create(campaign *Campaign) error {
	if res := c.DB.Create(campaign); res.Error != nil {
		log.Printf("error creating campaign: %s\n", res.Error)
		return res.Error
	}
	return nil
}

func (c *CampaignRepository) FindByUUID(uuid string) (*Campaign, error) {
	var campaign Campaign

	res := c.DB.Where("uuid = ?", uuid).First(&campaign)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &campaign, res.Error
}

func (c *CampaignRepository) DeleteByCompany(companyID string) error {
	res := c.DB.Where("company_id = ?", companyID).Delete(&Campaign{})
	if res.Error != nil {
		log.Printf("error purging campaigns for company %s: %s\n", companyID, res.Error)
	}
	return res.Error
}

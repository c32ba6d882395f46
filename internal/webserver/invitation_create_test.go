package webserver_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/webserver/infrastructure"
)

type createResponse struct {
	Created []struct {
		UUID   string `json:"id"`
		Email  string `json:"email"`
		Status string `json:"status"`
	} `json:"created"`
	Skipped []struct {
		Email  string `json:"email"`
		Reason string `json:"reason"`
	} `json:"skipped"`
}

func TestCreateInvitations(t *testing.T) {
	db := infrastructure.Connect("file::memory:")
	app := bootstrapApp(t, db)

	admin := addUser(t, db, "admin@company.test", "secret", model.RoleAdmin, "company-1", "People")
	employee := addUser(t, db, "eva@company.test", "secret", model.RoleEmployee, "company-1", "Engineering")
	campaign := addCampaign(t, db, admin.CompanyID, model.KindSurvey)

	token := login(t, app, "admin@company.test", "secret")

	response := doRequest(t, app, http.MethodPost, "/invitations", token, map[string]interface{}{
		"campaign_id":   campaign.UUID,
		"recipient_ids": []string{employee.Uuid, "missing-recipient"},
		"emails":        []string{"plain@company.test", "not-an-email"},
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, response.StatusCode)
	}

	var body createResponse
	decode(t, response, &body)

	if len(body.Created) != 2 {
		t.Fatalf("Expected 2 created invitations, got %d", len(body.Created))
	}
	for _, created := range body.Created {
		if created.Status != string(model.StatusPending) {
			t.Errorf("Expected created invitations to start pending, got %s", created.Status)
		}
	}

	var stored []model.Invitation
	db.Where("campaign_id = ?", campaign.UUID).Find(&stored)
	for _, invitation := range stored {
		if !invitation.ExpiresAt.After(invitation.CreatedAt) {
			t.Errorf("Expected expiry after creation, got %s <= %s", invitation.ExpiresAt, invitation.CreatedAt)
		}
	}

	if len(body.Skipped) != 2 {
		t.Fatalf("Expected 2 skipped recipients, got %d", len(body.Skipped))
	}
	reasons := map[string]string{}
	for _, skipped := range body.Skipped {
		reasons[skipped.Email] = skipped.Reason
	}
	if reasons["missing-recipient"] != "recipient not found" {
		t.Errorf("Expected unknown directory entries to be reported, got %q", reasons["missing-recipient"])
	}
	if reasons["not-an-email"] != "invalid email address" {
		t.Errorf("Expected malformed addresses to be reported, got %q", reasons["not-an-email"])
	}

	// Each invitation queues its initial send plus the three planned reminders.
	var jobs int64
	db.Model(&model.NotificationJob{}).Where("status = ?", model.JobPending).Count(&jobs)
	if jobs != 8 {
		t.Errorf("Expected 8 queued jobs, got %d", jobs)
	}

	t.Run("Recipients holding an active invitation are skipped", func(t *testing.T) {
		response := doRequest(t, app, http.MethodPost, "/invitations", token, map[string]interface{}{
			"campaign_id": campaign.UUID,
			"emails":      []string{"plain@company.test"},
		})
		if response.StatusCode != http.StatusCreated {
			t.Fatalf("Expected status %d, got %d", http.StatusCreated, response.StatusCode)
		}

		var body createResponse
		decode(t, response, &body)
		if len(body.Created) != 0 || len(body.Skipped) != 1 {
			t.Fatalf("Expected the duplicate to be skipped, got %+v", body)
		}
		if body.Skipped[0].Reason != "duplicate" {
			t.Errorf("Expected reason duplicate, got %q", body.Skipped[0].Reason)
		}
	})

	t.Run("Campaigns of other companies are not visible", func(t *testing.T) {
		foreign := addCampaign(t, db, "company-2", model.KindSurvey)

		response := doRequest(t, app, http.MethodPost, "/invitations", token, map[string]interface{}{
			"campaign_id": foreign.UUID,
			"emails":      []string{"plain@company.test"},
		})
		if response.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status %d, got %d", http.StatusNotFound, response.StatusCode)
		}
	})

	t.Run("Empty recipient list is rejected", func(t *testing.T) {
		response := doRequest(t, app, http.MethodPost, "/invitations", token, map[string]interface{}{
			"campaign_id": campaign.UUID,
		})
		if response.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, response.StatusCode)
		}
	})
}

func TestCreateInvitationsWithPersonalizationRules(t *testing.T) {
	db := infrastructure.Connect("file::memory:")
	app := bootstrapApp(t, db)

	addUser(t, db, "admin@company.test", "secret", model.RoleAdmin, "company-1", "People")
	engineer := addUser(t, db, "eva@company.test", "secret", model.RoleEmployee, "company-1", "Engineering")
	campaign := addCampaign(t, db, "company-1", model.KindSurvey)

	token := login(t, app, "admin@company.test", "secret")

	response := doRequest(t, app, http.MethodPost, "/invitations", token, map[string]interface{}{
		"campaign_id":    campaign.UUID,
		"recipient_ids":  []string{engineer.Uuid},
		"custom_message": "generic note",
		"personalization_rules": []map[string]interface{}{
			{
				"when":    []map[string]string{{"field": "department", "op": "eq", "value": "engineering"}},
				"message": "engineering note",
			},
		},
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, response.StatusCode)
	}

	var job model.NotificationJob
	if err := db.Where("payload_kind = ?", "invitation").First(&job).Error; err != nil {
		t.Fatalf("Expected an initial send job: %v", err)
	}
	if !strings.Contains(job.Payload, "engineering note") {
		t.Errorf("Expected the personalized message in the payload, got %s", job.Payload)
	}
}

package services

import (
	"context"
	"testing"
	"time"

	"onethy/models"
	"onethy/utils"
)

func TestCampaignLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewCampaignService(db)

	campaign, err := svc.Create(ctx, owner, CreateCampaignInput{Name: "Black Friday", Message: "50% off", TotalMessages: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if campaign.Status != models.CampaignDraft {
		t.Errorf("status = %s, want draft", campaign.Status)
	}

	started, err := svc.Update(ctx, owner, campaign.ID, UpdateCampaignInput{Status: utils.Pointer(models.CampaignActive)})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if started.StartedAt == nil {
		t.Fatal("startedAt not set")
	}
	firstStart := *started.StartedAt

	paused, _ := svc.Update(ctx, owner, campaign.ID, UpdateCampaignInput{Status: utils.Pointer(models.CampaignPaused)})
	resumed, _ := svc.Update(ctx, owner, campaign.ID, UpdateCampaignInput{Status: utils.Pointer(models.CampaignActive)})
	if paused.Status != models.CampaignPaused || !resumed.StartedAt.Equal(firstStart) {
		t.Error("resuming should keep the original start time")
	}

	done, err := svc.Update(ctx, owner, campaign.ID, UpdateCampaignInput{
		Status:       utils.Pointer(models.CampaignCompleted),
		SentMessages: utils.Pointer(100),
		DeliveryRate: utils.Pointer(97.5),
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.CompletedAt == nil || done.SentMessages != 100 || done.DeliveryRate != 97.5 || done.Name != "Black Friday" {
		t.Errorf("unexpected campaign: %+v", done)
	}

	list, _ := svc.List(ctx, owner, models.CampaignCompleted, Page{})
	if list.Total != 1 {
		t.Errorf("completed campaigns = %d, want 1", list.Total)
	}

	if err := svc.Delete(ctx, owner, campaign.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.Get(ctx, owner, campaign.ID)
	assertNotFound(t, err)
}

func TestCampaignUpdate_Validation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	other := newOwner(t, db, "other@test.com")
	svc := NewCampaignService(db)
	campaign, _ := svc.Create(ctx, owner, CreateCampaignInput{Name: "Promo"})

	_, err := svc.Update(ctx, owner, campaign.ID, UpdateCampaignInput{OpenRate: utils.Pointer(101.0)})
	assertValidation(t, err, "openRate")
	_, err = svc.Update(ctx, owner, campaign.ID, UpdateCampaignInput{SentMessages: utils.Pointer(-1)})
	assertValidation(t, err, "sentMessages")
	_, err = svc.Update(ctx, owner, campaign.ID, UpdateCampaignInput{Status: utils.Pointer("running")})
	assertValidation(t, err, "status")
	_, err = svc.Update(ctx, other, campaign.ID, UpdateCampaignInput{Name: utils.Pointer("x")})
	assertNotFound(t, err)
	_, err = svc.Create(ctx, owner, CreateCampaignInput{Name: " "})
	assertValidation(t, err, "name")
}

func TestActivateDue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewCampaignService(db)

	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	due, _ := svc.Create(ctx, owner, CreateCampaignInput{Name: "due", ScheduledAt: &past})
	later, _ := svc.Create(ctx, owner, CreateCampaignInput{Name: "later", ScheduledAt: &future})
	unscheduled, _ := svc.Create(ctx, owner, CreateCampaignInput{Name: "manual"})

	started, err := svc.ActivateDue(ctx, now)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if started != 1 {
		t.Errorf("started %d campaigns, want 1", started)
	}

	for _, tc := range []struct {
		id   uint
		want string
	}{
		{due.ID, models.CampaignActive},
		{later.ID, models.CampaignDraft},
		{unscheduled.ID, models.CampaignDraft},
	} {
		got, _ := svc.Get(ctx, owner, tc.id)
		if got.Status != tc.want {
			t.Errorf("campaign %d status = %s, want %s", tc.id, got.Status, tc.want)
		}
	}

	again, _ := svc.ActivateDue(ctx, now)
	if again != 0 {
		t.Errorf("second run started %d campaigns, want 0", again)
	}
}

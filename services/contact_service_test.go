package services

import (
	"context"
	"errors"
	"testing"

	"onethy/models"
	"onethy/utils"
)

func TestContactCreate_Defaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)

	contact, err := svc.Create(ctx, owner, CreateContactInput{Name: "João", Phone: "5511999999999"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if contact.Status != models.ContactActive || contact.Source != models.SourceManual {
		t.Errorf("status=%s source=%s", contact.Status, contact.Source)
	}
	if contact.Tags == nil || len(contact.Tags) != 0 {
		t.Errorf("tags = %#v, want empty list", contact.Tags)
	}

	got, err := svc.Get(ctx, owner, contact.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "João" || got.Phone != "5511999999999" || got.Status != models.ContactActive {
		t.Errorf("round trip changed contact: %+v", got)
	}
	if got.Tags == nil {
		t.Error("tags should be an empty list after load")
	}
}

func TestContactCreate_RoundTripWithTags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)

	created, err := svc.Create(ctx, owner, CreateContactInput{
		Name:   "Maria Souza",
		Phone:  "5521988887777",
		Status: models.ContactInactive,
		Tags:   []string{"vip", "rj"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Maria Souza" || got.Phone != "5521988887777" {
		t.Errorf("name/phone = %q/%q", got.Name, got.Phone)
	}
	if got.Status != models.ContactInactive {
		t.Errorf("status = %s, want %s", got.Status, models.ContactInactive)
	}
	tags := map[string]bool{}
	for _, tag := range got.Tags {
		tags[tag] = true
	}
	if len(got.Tags) != 2 || !tags["vip"] || !tags["rj"] {
		t.Errorf("tags = %v, want [vip rj]", got.Tags)
	}
}

func TestContactCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)

	cases := []struct {
		name  string
		input CreateContactInput
		field string
	}{
		{"missing name", CreateContactInput{Phone: "1"}, "name"},
		{"missing phone", CreateContactInput{Name: "x"}, "phone"},
		{"bad email", CreateContactInput{Name: "x", Phone: "1", Email: "nope"}, "email"},
		{"bad status", CreateContactInput{Name: "x", Phone: "1", Status: "gone"}, "status"},
		{"bad source", CreateContactInput{Name: "x", Phone: "1", Source: "fax"}, "source"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner, tc.input)
			assertValidation(t, err, tc.field)
		})
	}

	newContact(t, db, owner, "João", "5511999999999")
	_, err := svc.Create(ctx, owner, CreateContactInput{Name: "Outro", Phone: "5511999999999"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on duplicate phone, got %v", err)
	}

	other := newOwner(t, db, "other@test.com")
	if _, err := svc.Create(ctx, other, CreateContactInput{Name: "João", Phone: "5511999999999"}); err != nil {
		t.Fatalf("phones are unique per tenant only: %v", err)
	}
}

func TestContactSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)

	joao := newContact(t, db, owner, "João Silva", "5511999999999", "vip", "sp")
	maria := newContact(t, db, owner, "Maria Souza", "5521988887777", "rj")
	if _, err := svc.Update(ctx, owner, maria.ID, UpdateContactInput{Email: utils.Pointer("maria@loja.com.br")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	blocked := newContact(t, db, owner, "Spam", "5500000000000")
	coupon := newContact(t, db, owner, "Cupom 50%", "5531977776666")
	if _, err := svc.Update(ctx, owner, blocked.ID, UpdateContactInput{Status: utils.Pointer(models.ContactBlocked)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	cases := []struct {
		name    string
		filters ContactFilters
		want    []uint
	}{
		{"name case insensitive", ContactFilters{Search: "SILVA"}, []uint{joao.ID}},
		{"email", ContactFilters{Search: "LOJA.COM"}, []uint{maria.ID}},
		{"phone substring", ContactFilters{Search: "99999"}, []uint{joao.ID}},
		{"tags has some", ContactFilters{Tags: []string{"rj", "vip"}}, []uint{maria.ID, joao.ID}},
		{"status", ContactFilters{Status: models.ContactBlocked}, []uint{blocked.ID}},
		{"tag and search", ContactFilters{Search: "maria", Tags: []string{"vip"}}, nil},
		{"percent is literal", ContactFilters{Search: "50%"}, []uint{coupon.ID}},
		{"underscore is literal", ContactFilters{Search: "_"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := svc.Search(ctx, owner, tc.filters, Page{})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(list.Items) != len(tc.want) {
				t.Fatalf("got %d contacts, want %d", len(list.Items), len(tc.want))
			}
			for i, id := range tc.want {
				if list.Items[i].ID != id {
					t.Errorf("item %d = %d, want %d", i, list.Items[i].ID, id)
				}
			}
		})
	}

	list, _ := svc.Search(ctx, owner, ContactFilters{Search: "SILVA"}, Page{})
	if len(list.Items) == 1 && len(list.Items[0].Tags) != 2 {
		t.Errorf("tags not loaded: %v", list.Items[0].Tags)
	}
}

func TestContactUpdate_ReplacesTags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)
	contact := newContact(t, db, owner, "João", "5511999999999", "vip")

	updated, err := svc.Update(ctx, owner, contact.ID, UpdateContactInput{Tags: &[]string{"novo", "cliente"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Tags) != 2 || updated.Name != "João" {
		t.Errorf("unexpected contact: name=%s tags=%v", updated.Name, updated.Tags)
	}

	newContact(t, db, owner, "Maria", "5521988887777")
	_, err = svc.Update(ctx, owner, contact.ID, UpdateContactInput{Phone: utils.Pointer("5521988887777")})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestContactDelete_RemovesConversations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)

	res, err := NewMessageService(db).ReceiveInbound(ctx, owner, InboundMessageInput{Phone: "5511999999999", Content: "Oi"})
	if err != nil {
		t.Fatalf("inbound: %v", err)
	}
	if _, _, err := svc.SetAttribute(ctx, owner, res.Contact.ID, AttributeInput{Name: "cpf", Value: "123"}); err != nil {
		t.Fatalf("attribute: %v", err)
	}

	other := newOwner(t, db, "other@test.com")
	assertNotFound(t, svc.Delete(ctx, other, res.Contact.ID))

	if err := svc.Delete(ctx, owner, res.Contact.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, model := range []interface{}{&models.Contact{}, &models.Conversation{}, &models.Message{}, &models.ContactAttribute{}} {
		var count int64
		db.Model(model).Count(&count)
		if count != 0 {
			t.Errorf("%T rows left: %d", model, count)
		}
	}
}

func TestContactAttributes_FindOrCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)
	contact := newContact(t, db, owner, "João", "5511999999999")

	attr, created, err := svc.SetAttribute(ctx, owner, contact.ID, AttributeInput{Name: "plano", Value: "gold"})
	if err != nil || !created {
		t.Fatalf("first set: created=%v err=%v", created, err)
	}
	if attr.Type != "text" {
		t.Errorf("type = %s, want text", attr.Type)
	}

	again, created, err := svc.SetAttribute(ctx, owner, contact.ID, AttributeInput{Name: "plano", Value: "platinum"})
	if err != nil || created {
		t.Fatalf("second set: created=%v err=%v", created, err)
	}
	if again.ID != attr.ID || again.Value != "platinum" {
		t.Errorf("expected the existing attribute to be updated, got %+v", again)
	}

	attrs, err := svc.ListAttributes(ctx, owner, contact.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attrs) != 1 {
		t.Errorf("attributes = %d, want 1", len(attrs))
	}

	_, _, err = svc.SetAttribute(ctx, owner, contact.ID, AttributeInput{Name: "idade", Value: "trinta", Type: "number"})
	assertValidation(t, err, "value")

	other := newOwner(t, db, "other@test.com")
	_, _, err = svc.SetAttribute(ctx, other, contact.ID, AttributeInput{Name: "x", Value: "y"})
	assertNotFound(t, err)
}

func TestContactAttributes_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, db, "owner@test.com")
	svc := NewContactService(db)
	contact := newContact(t, db, owner, "João", "5511999999999")
	otherContact := newContact(t, db, owner, "Maria", "5521988887777")

	plan, _, _ := svc.SetAttribute(ctx, owner, contact.ID, AttributeInput{Name: "plano", Value: "gold"})
	svc.SetAttribute(ctx, owner, contact.ID, AttributeInput{Name: "cidade", Value: "SP"})

	_, err := svc.UpdateAttribute(ctx, owner, contact.ID, plan.ID, UpdateAttributeInput{Name: utils.Pointer("cidade")})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on rename, got %v", err)
	}

	updated, err := svc.UpdateAttribute(ctx, owner, contact.ID, plan.ID, UpdateAttributeInput{
		Value: utils.Pointer("true"),
		Type:  utils.Pointer("boolean"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Value != "true" || updated.Type != "boolean" || updated.Name != "plano" {
		t.Errorf("unexpected attribute: %+v", updated)
	}

	_, err = svc.UpdateAttribute(ctx, owner, otherContact.ID, plan.ID, UpdateAttributeInput{Value: utils.Pointer("x")})
	assertNotFound(t, err)
	assertNotFound(t, svc.DeleteAttribute(ctx, owner, otherContact.ID, plan.ID))

	if err := svc.DeleteAttribute(ctx, owner, contact.ID, plan.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	attrs, _ := svc.ListAttributes(ctx, owner, contact.ID)
	if len(attrs) != 1 || attrs[0].Name != "cidade" {
		t.Errorf("unexpected attributes after delete: %+v", attrs)
	}
}

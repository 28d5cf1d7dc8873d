package utils

import (
	"strings"
	"testing"
)

type contactBody struct {
	Name   string `json:"name" validate:"required"`
	Phone  string `json:"phone" validate:"required,max=20"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive blocked"`
}

type macroBody struct {
	Shortcut string `json:"shortcut" validate:"shortcut"`
}

func TestValidateStruct_UsesJSONFieldNames(t *testing.T) {
	err := ValidateStruct(contactBody{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "name is required") || !strings.Contains(msg, "phone is required") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestValidateStruct_OneOf(t *testing.T) {
	err := ValidateStruct(contactBody{Name: "a", Phone: "1", Status: "deleted"})
	if err == nil || !strings.Contains(err.Error(), "status must be one of: active, inactive, blocked") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateStruct_Shortcut(t *testing.T) {
	cases := map[string]bool{
		"":         true,
		"/ola":     true,
		"ola":      false,
		"/":        false,
		"/bom dia": false,
	}
	for shortcut, ok := range cases {
		err := ValidateStruct(macroBody{Shortcut: shortcut})
		if (err == nil) != ok {
			t.Errorf("shortcut %q: expected ok=%v, got err=%v", shortcut, ok, err)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("joao@example.com") {
		t.Error("expected valid email")
	}
	if IsValidEmail("not-an-email") {
		t.Error("expected invalid email")
	}
}

package utils

import (
	"encoding/json"
	"testing"
)

func TestNullable_UnmarshalJSON(t *testing.T) {
	var body struct {
		AgentID Nullable[uint] `json:"agentId"`
		TeamID  Nullable[uint] `json:"teamId"`
		Other   Nullable[uint] `json:"other"`
	}
	if err := json.Unmarshal([]byte(`{"agentId": 7, "teamId": null}`), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !body.AgentID.Set || body.AgentID.Value == nil || *body.AgentID.Value != 7 {
		t.Errorf("agentId: expected set to 7, got %+v", body.AgentID)
	}
	if !body.TeamID.IsNull() {
		t.Errorf("teamId: expected explicit null, got %+v", body.TeamID)
	}
	if body.Other.Set {
		t.Errorf("other: expected unset, got %+v", body.Other)
	}
}

func TestNullable_InvalidValue(t *testing.T) {
	var body struct {
		AgentID Nullable[uint] `json:"agentId"`
	}
	if err := json.Unmarshal([]byte(`{"agentId": "abc"}`), &body); err == nil {
		t.Fatal("expected error for non-numeric agentId")
	}
}

func TestNullable_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Nullable[string] `json:"a"`
		B Nullable[string] `json:"b"`
	}{A: Nullable[string]{Set: true, Value: Pointer("x")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"a":"x","b":null}` {
		t.Errorf("unexpected json: %s", out)
	}
}

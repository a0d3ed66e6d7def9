package types

import (
	"encoding/json"
	"testing"
)

type patchPayload struct {
	Name     PatchField[string]  `json:"name"`
	Latitude PatchField[float64] `json:"latitude"`
}

func TestPatchFieldStates(t *testing.T) {
	var payload patchPayload
	if err := json.Unmarshal([]byte(`{"name":"garage cam","latitude":null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, ok := payload.Name.Get(); !ok || got != "garage cam" {
		t.Fatalf("expected name set to garage cam, got %q ok=%v", got, ok)
	}
	if !payload.Latitude.IsClear() {
		t.Fatal("expected explicit null to clear latitude")
	}

	var absent patchPayload
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !absent.Name.IsKeep() || !absent.Latitude.IsKeep() {
		t.Fatal("expected absent fields to keep stored values")
	}
}

func TestPatchFieldApply(t *testing.T) {
	current := 42.0

	if got := KeepField[float64]().Apply(&current); got == nil || *got != 42.0 {
		t.Fatalf("keep should pass through, got %v", got)
	}
	if got := ClearField[float64]().Apply(&current); got != nil {
		t.Fatalf("clear should nil out the value, got %v", got)
	}
	if got := SetField(7.5).Apply(&current); got == nil || *got != 7.5 {
		t.Fatalf("set should replace the value, got %v", got)
	}
	if got := SetField(7.5).Apply(nil); got == nil || *got != 7.5 {
		t.Fatalf("set should work without a current value, got %v", got)
	}
}

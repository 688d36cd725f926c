package registry

import "testing"

func TestDefault_StableOrder(t *testing.T) {
	models := Default()
	if len(models) != 3 {
		t.Fatalf("Expected 3 models, got %d", len(models))
	}

	wantIDs := []string{
		"openai/gpt-4o",
		"anthropic/claude-3-5-sonnet-20241022",
		"xai/grok-beta",
	}
	for i, want := range wantIDs {
		if models[i].ID != want {
			t.Errorf("Expected model %d to be %s, got %s", i, want, models[i].ID)
		}
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Default registry should validate: %v", err)
	}
}

func TestDefault_Pricing(t *testing.T) {
	for _, m := range Default() {
		if m.InputPricePer1K <= 0 || m.OutputPricePer1K <= 0 {
			t.Errorf("Model %s has non-positive pricing: in=%v out=%v", m.ID, m.InputPricePer1K, m.OutputPricePer1K)
		}
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	models := []Model{
		{ID: "a/one", Name: "One"},
		{ID: "a/one", Name: "Also One"},
	}
	if err := Validate(models); err == nil {
		t.Error("Expected duplicate id error, got nil")
	}
}

func TestValidate_EmptyID(t *testing.T) {
	if err := Validate([]Model{{Name: "Anonymous"}}); err == nil {
		t.Error("Expected empty id error, got nil")
	}
}

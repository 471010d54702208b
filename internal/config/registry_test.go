package config

import (
	"os"
	"testing"
)

func TestLoadRegistryEmbedded(t *testing.T) {
	os.Setenv("SAM_GOV_API_KEY", "sam-key-123")
	defer os.Unsetenv("SAM_GOV_API_KEY")

	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	if len(reg.Sources) != 10 {
		t.Errorf("expected 10 sources, got %d", len(reg.Sources))
	}

	sam := reg.Source("sam_gov")
	if sam == nil {
		t.Fatal("sam_gov missing from registry")
	}
	if sam.APIKey != "sam-key-123" {
		t.Errorf("expected expanded API key, got %q", sam.APIKey)
	}
	if sam.MaxRetries != 2 {
		t.Errorf("expected max_retries 2, got %d", sam.MaxRetries)
	}

	if reg.Source("grants_gov") == nil || !reg.Source("grants_gov").Enabled {
		t.Error("grants_gov should be registered and enabled")
	}
	if reg.Source("nope") != nil {
		t.Error("unknown id should return nil")
	}
}

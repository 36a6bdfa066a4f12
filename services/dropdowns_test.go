package services

import (
	"testing"
)

func TestPackingServices(t *testing.T) {
	expected := []string{"self_pack", "partial_pack", "full_pack"}
	if len(PackingServices) != len(expected) {
		t.Fatalf("expected %d packing options, got %d", len(expected), len(PackingServices))
	}
	for i, v := range expected {
		if PackingServices[i].Value != v {
			t.Errorf("PackingServices[%d] = %q, want %q", i, PackingServices[i].Value, v)
		}
		if PackingServices[i].Label == "" {
			t.Errorf("PackingServices[%d] has no label", i)
		}
	}
}

func TestStorageOptions(t *testing.T) {
	expected := []string{"no_storage", "storage_30days", "storage_60days"}
	if len(StorageOptions) != len(expected) {
		t.Fatalf("expected %d storage options, got %d", len(expected), len(StorageOptions))
	}
	for i, v := range expected {
		if StorageOptions[i].Value != v {
			t.Errorf("StorageOptions[%d] = %q, want %q", i, StorageOptions[i].Value, v)
		}
	}
}

func TestHasOption(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"full_pack", true},
		{"", false},
		{"Full_Pack", false},
		{"storage_30days", false},
	}
	for _, tt := range tests {
		if got := HasOption(PackingServices, tt.value); got != tt.want {
			t.Errorf("HasOption(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

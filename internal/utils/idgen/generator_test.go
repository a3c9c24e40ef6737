package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	id, err := GenerateSecureID("msg", 20)
	if err != nil {
		t.Fatalf("GenerateSecureID() error = %v", err)
	}
	if !strings.HasPrefix(id, "msg_") {
		t.Errorf("id %q missing prefix", id)
	}
	if len(id) != len("msg_")+20 {
		t.Errorf("id %q has wrong length", id)
	}
}

func TestLocalMessageIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := LocalMessageID()
		if err != nil {
			t.Fatalf("LocalMessageID() error = %v", err)
		}
		if !strings.HasPrefix(id, LocalPrefix+"_") {
			t.Errorf("id %q missing local prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

package share

import "testing"

const typesTestPrefix = "share:types_test"

func TestParseShareScope(t *testing.T) {
	tests := []struct {
		in      string
		want    ShareScope
		wantErr bool
	}{
		{"project", ScopeProject, false},
		{"Space", ScopeSpace, false},
		{" service ", ScopeService, false},
		{"node", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseShareScope(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s - ParseShareScope(%q) err = %v, wantErr %v", typesTestPrefix, tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s - ParseShareScope(%q) = %q, want %q", typesTestPrefix, tt.in, got, tt.want)
		}
	}
}

func TestParseRoleInShare(t *testing.T) {
	for _, in := range []string{"admin", "MEMBER", "guest", "service"} {
		if _, err := ParseRoleInShare(in); err != nil {
			t.Errorf("%s - ParseRoleInShare(%q) unexpected error: %v", typesTestPrefix, in, err)
		}
	}
	if _, err := ParseRoleInShare("owner"); err == nil {
		t.Errorf("%s - expected error for unknown role", typesTestPrefix)
	}
}

func TestParseInvitationListKind(t *testing.T) {
	got, err := ParseInvitationListKind("Received")
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", typesTestPrefix, err)
	}
	if got != ListReceived {
		t.Errorf("%s - got %q, want %q", typesTestPrefix, got, ListReceived)
	}
	if _, err := ParseInvitationListKind("pending"); err == nil {
		t.Errorf("%s - expected error for unknown kind", typesTestPrefix)
	}
}

package commsutil

import "testing"

func TestBuildServiceSubject(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		service string
		want    string
	}{
		{"users service", "ockam.controller", "users", "ockam.controller.users"},
		{"empty prefix uses default", "", "users", "ockam.controller.users"},
		{"custom prefix", "dev.cloud", "projects", "dev.cloud.projects"},
		{"dotted service", "ockam.controller", "share.v1", "ockam.controller.share_v1"},
		{"wildcards are not tokens", "ockam.controller", "a*b>", "ockam.controller.a_b_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildServiceSubject(tt.prefix, tt.service)
			if got != tt.want {
				t.Errorf("BuildServiceSubject(%q, %q) = %q, want %q", tt.prefix, tt.service, got, tt.want)
			}
		})
	}
}

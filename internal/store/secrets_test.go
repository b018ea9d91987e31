package store

import "testing"

func TestSecretVersionName(t *testing.T) {
	s := NewSecretsStore(nil, "proj")
	tests := map[string]string{
		"sheets-sa":                           "projects/proj/secrets/sheets-sa/versions/latest",
		"projects/other/secrets/x":            "projects/other/secrets/x/versions/latest",
		"projects/other/secrets/x/versions/3": "projects/other/secrets/x/versions/3",
	}
	for in, want := range tests {
		if got := s.versionName(in); got != want {
			t.Errorf("versionName(%q) = %q, want %q", in, got, want)
		}
	}
}

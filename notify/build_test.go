package notify

import (
	"errors"
	"testing"
)

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"success", "Success"},
		{"FAILED", "Failed"},
		{"build started", "Build started"},
		{"", ""},
		{"éxito", "Éxito"},
		{"1st", "1st"},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		status string
		color  string
		icon   string
	}{
		{"success", "#28a745", "✅"},
		{"PASSED", "#28a745", "✅"},
		{"failure", "#dc3545", "❌"},
		{" failed ", "#dc3545", "❌"},
		{"started", "#007bff", "🚀"},
		{"warning", "#ffc107", "⚠️"},
		{"canceled", "#6c757d", "⏹️"},
		{"something-else", "#6c757d", "ℹ️"},
	}
	for _, tt := range tests {
		got := StyleFor(tt.status)
		if got.Color != tt.color || got.Icon != tt.icon {
			t.Errorf("StyleFor(%q) = %+v, want color %s icon %s", tt.status, got, tt.color, tt.icon)
		}
	}
}

func TestBuildFromArgs(t *testing.T) {
	s := Settings{AppName: "Demo", OrgName: "Acme", UserName: "sam", VersionName: "2.1.0", VersionCode: "21", WebURL: "https://demo.example"}

	b, err := BuildFromArgs([]string{"success", "android", "b-42", "All good", "extra"}, s)
	if err != nil {
		t.Fatalf("BuildFromArgs: %v", err)
	}
	want := Build{
		Status: "success", Platform: "android", BuildID: "b-42", Message: "All good",
		AppName: "Demo", OrgName: "Acme", UserName: "sam", VersionName: "2.1.0", VersionCode: "21",
		WebURL: "https://demo.example",
	}
	if b != want {
		t.Errorf("Build = %+v\nwant    %+v", b, want)
	}

	if _, err := BuildFromArgs([]string{"success", "android", "b-42"}, s); !errors.Is(err, ErrUsage) {
		t.Errorf("three args: err = %v, want ErrUsage", err)
	}
}

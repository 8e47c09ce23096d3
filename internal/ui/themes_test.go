package ui

import "testing"

func TestInitTheme(t *testing.T) {
	orig := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(orig) })

	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("NO_COLOR ignored, got theme %q", GetCurrentTheme().Name)
	}

	InitTheme(true)
	if got := GetCurrentTheme(); got.Reset != "" || got.Primary != "" {
		t.Error("no-color theme emits escape codes")
	}
}

func TestSetCurrentTheme(t *testing.T) {
	orig := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(orig) })

	SetCurrentTheme(DarkTheme)
	if GetCurrentTheme().Reset != "\033[0m" {
		t.Error("dark theme not active")
	}
}

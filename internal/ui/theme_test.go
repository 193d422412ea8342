package ui

import "testing"

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown).Name = %q, want Nightfox", got)
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	names := ThemeNames()
	current := names[0]
	for i := 0; i < len(names); i++ {
		current = NextTheme(current)
	}
	if current != names[0] {
		t.Fatalf("after a full cycle got %q, want %q", current, names[0])
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestThemes_DefineEveryStatus(t *testing.T) {
	statuses := []string{
		statusLive, statusWaiting, statusOffline, statusError,
		statusExpired, statusNormal, statusAlert, statusAway,
	}
	for _, name := range ThemeNames() {
		theme := GetTheme(name)
		for _, s := range statuses {
			if theme.StatusColors[s] == "" {
				t.Errorf("theme %s has no color for %q", name, s)
			}
		}
	}
}

func TestSplitWidths(t *testing.T) {
	got := splitWidths(100, 3)
	if len(got) != 3 || got[0] != 33 || got[1] != 33 || got[2] != 34 {
		t.Fatalf("splitWidths(100, 3) = %v", got)
	}
	if splitWidths(10, 0) != nil {
		t.Fatalf("splitWidths with zero columns should be nil")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"heart rate history", 10, "heart r..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
	if got := truncateMiddle("/home/user/.local/share/mmwdash/mmwdash.log", 20); len([]rune(got)) != 20 {
		t.Errorf("truncateMiddle length = %d, want 20", len([]rune(got)))
	}
}

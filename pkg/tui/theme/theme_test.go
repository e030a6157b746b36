package theme

import "testing"

func TestForBackgroundPicksPalette(t *testing.T) {
	dark, light := ForBackground(true), ForBackground(false)
	if dark.Header.Title.GetForeground() == light.Header.Title.GetForeground() {
		t.Fatal("dark and light titles share a color")
	}
	if Default().Header.Title.GetForeground() != dark.Header.Title.GetForeground() {
		t.Fatal("default theme is not the dark palette")
	}
}

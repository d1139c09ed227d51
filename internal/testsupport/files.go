package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteGcode writes content to name below dir and returns the full path.
func WriteGcode(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// PrusaGcode renders a minimal PrusaSlicer file for a single tool.
func PrusaGcode(material, filamentName string, grams float64) string {
	return "; generated by PrusaSlicer 2.8.1+linux-x64-GTK3 on 2026-01-01 at 10:00:00 UTC\n" +
		"G28\nG1 X10 Y10\n" +
		"; filament used [g] = " + formatGrams(grams) + "\n" +
		"; filament_settings_id = \"" + filamentName + "\"\n" +
		"; filament_type = " + material + "\n"
}

package gcode_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spoolcheck/internal/gcode"
)

const prusaHeader = `; generated by PrusaSlicer 2.8.1+linux-x64-GTK3 on 2024-10-01 at 10:00:00 UTC

; external perimeters extrusion width = 0.45mm
G28
`

const prusaFooter = `
; filament used [mm] = 15012.34, 220.10
; filament used [g] = 44.78, 0.66
; total filament used [g] = 45.44
; estimated printing time (normal mode) = 2h 3m 4s
; prusaslicer_config = begin
; filament_settings_id = "Prusament PLA Galaxy Black";"Generic PETG"
; filament_type = PLA;PETG
; prusaslicer_config = end
`

func parseString(t *testing.T, content string) gcode.Metadata {
	t.Helper()
	meta, err := gcode.Parse(strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return meta
}

func TestParsePrusaSlicer(t *testing.T) {
	meta := parseString(t, prusaHeader+"G1 X10 Y10\n"+prusaFooter)
	if meta.Slicer != gcode.SlicerPrusa || meta.SlicerVersion != "2.8.1+linux-x64-GTK3" {
		t.Fatalf("unexpected slicer %q %q", meta.Slicer, meta.SlicerVersion)
	}
	if len(meta.FilamentWeights) != 2 || meta.FilamentWeights[0] != 44.78 {
		t.Fatalf("unexpected weights %v", meta.FilamentWeights)
	}
	if len(meta.FilamentNames) != 2 || meta.FilamentNames[0] != "Prusament PLA Galaxy Black" {
		t.Fatalf("unexpected names %q", meta.FilamentNames)
	}

	job := meta.Job("parts/clip.gcode")
	if job.RequiredMaterial != "PLA" || job.RequiredFilamentName != "Prusament PLA Galaxy Black" {
		t.Fatalf("expected tool 0 values, got %+v", job)
	}
	if job.RequiredWeight == nil || *job.RequiredWeight != 44.78 {
		t.Fatalf("expected tool 0 weight, got %v", job.RequiredWeight)
	}
	if job.Filename != "parts/clip.gcode" || job.Slicer != "PrusaSlicer" {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestParseOrcaSlicerTotalWeight(t *testing.T) {
	content := `; HEADER_BLOCK_START
; generated by OrcaSlicer 2.1.1 on 2024-08-01 at 12:00:00
; total layer number: 120
; total filament weight [g] : 18.92
; HEADER_BLOCK_END
G28
; CONFIG_BLOCK_START
; filament_settings_id = "Elegoo PLA+ @System"
; filament_type = PLA
; CONFIG_BLOCK_END
`
	meta := parseString(t, content)
	if meta.Slicer != gcode.SlicerOrca || meta.SlicerVersion != "2.1.1" {
		t.Fatalf("unexpected slicer %q %q", meta.Slicer, meta.SlicerVersion)
	}
	weight := meta.RequiredWeight()
	if weight == nil || *weight != 18.92 {
		t.Fatalf("expected total weight fallback, got %v", weight)
	}
	if got := meta.Job("x").RequiredFilamentName; got != "Elegoo PLA+ @System" {
		t.Fatalf("unexpected filament name %q", got)
	}
}

func TestParseBambuStudio(t *testing.T) {
	content := `; HEADER_BLOCK_START
; BambuStudio 01.09.07.52
; model printing time: 1h 2m; total estimated time: 1h 8m
; total filament weight [g] : 31.05
; HEADER_BLOCK_END
; filament_settings_id = "Bambu PETG HF @BBL X1C"
; filament_type = PETG
`
	meta := parseString(t, content)
	if meta.Slicer != gcode.SlicerBambu || meta.SlicerVersion != "01.09.07.52" {
		t.Fatalf("unexpected slicer %q %q", meta.Slicer, meta.SlicerVersion)
	}
	job := meta.Job("")
	if job.RequiredMaterial != "PETG" || *job.RequiredWeight != 31.05 {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestParseUnknownSlicerWithoutMetadata(t *testing.T) {
	meta := parseString(t, "; hand written\nG28\nG1 X0 Y0\n")
	if meta.Slicer != gcode.SlicerUnknown {
		t.Fatalf("expected unknown slicer, got %q", meta.Slicer)
	}
	job := meta.Job("manual.gcode")
	if job.RequiredWeight != nil || job.RequiredMaterial != "" || job.RequiredFilamentName != "" {
		t.Fatalf("expected empty requirements, got %+v", job)
	}
}

func TestParseFileFindsFooterPastHeadWindow(t *testing.T) {
	var body strings.Builder
	body.WriteString(prusaHeader)
	line := "G1 X1 Y1 E0.1\n"
	for body.Len() < 3<<20 {
		body.WriteString(line)
	}
	body.WriteString(prusaFooter)

	path := filepath.Join(t.TempDir(), "big.gcode")
	if err := os.WriteFile(path, []byte(body.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	meta, err := gcode.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if meta.Slicer != gcode.SlicerPrusa {
		t.Fatalf("unexpected slicer %q", meta.Slicer)
	}
	if got := meta.Job(path).RequiredMaterial; got != "PLA" {
		t.Fatalf("expected footer material PLA, got %q", got)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := gcode.ParseFile(filepath.Join(t.TempDir(), "nope.gcode")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDetectSlicerIgnoresLaterMentions(t *testing.T) {
	slicer, _ := gcode.DetectSlicer([]byte("; sliced with something else\n; PrusaSlicer mentioned without attribution\n"))
	if slicer != gcode.SlicerUnknown {
		t.Fatalf("expected unknown, got %q", slicer)
	}
}

package gcode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"spoolcheck/internal/checks"
)

// scanWindow is how many bytes are read from each end of the file.
const scanWindow = 512 << 10

// Slicer identifies the program that produced a gcode file.
type Slicer string

const (
	SlicerPrusa   Slicer = "PrusaSlicer"
	SlicerOrca    Slicer = "OrcaSlicer"
	SlicerBambu   Slicer = "BambuStudio"
	SlicerUnknown Slicer = "Unknown"
)

// Metadata is what the comment blocks say about filament usage.
type Metadata struct {
	Slicer          Slicer    `json:"slicer"`
	SlicerVersion   string    `json:"slicer_version,omitempty"`
	FilamentWeights []float64 `json:"filament_weights,omitempty"`
	TotalWeight     *float64  `json:"total_weight,omitempty"`
	FilamentNames   []string  `json:"filament_names,omitempty"`
	FilamentTypes   []string  `json:"filament_types,omitempty"`
}

// RequiredWeight returns tool 0's filament weight, falling back to the total
// weight when the slicer did not write per-tool usage.
func (m Metadata) RequiredWeight() *float64 {
	if len(m.FilamentWeights) > 0 {
		weight := m.FilamentWeights[0]
		return &weight
	}
	if m.TotalWeight != nil {
		weight := *m.TotalWeight
		return &weight
	}
	return nil
}

// Job converts the metadata to the engine's view for tool 0.
func (m Metadata) Job(filename string) checks.JobMetadata {
	return checks.JobMetadata{
		Filename:             filename,
		Slicer:               string(m.Slicer),
		RequiredMaterial:     first(m.FilamentTypes),
		RequiredWeight:       m.RequiredWeight(),
		RequiredFilamentName: first(m.FilamentNames),
	}
}

// ParseFile opens path and parses its metadata.
func ParseFile(path string) (Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("open gcode: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return Metadata{}, fmt.Errorf("stat gcode: %w", err)
	}
	return Parse(file, info.Size())
}

// Parse reads the head and tail windows of a gcode file of the given size.
func Parse(r io.ReaderAt, size int64) (Metadata, error) {
	head, err := readWindow(r, 0, min(size, scanWindow))
	if err != nil {
		return Metadata{}, err
	}
	var tail []byte
	if size > scanWindow {
		start := max(size-scanWindow, scanWindow)
		if tail, err = readWindow(r, start, size-start); err != nil {
			return Metadata{}, err
		}
	}

	var meta Metadata
	meta.Slicer, meta.SlicerVersion = DetectSlicer(head)
	for _, block := range [][]byte{head, tail} {
		scanComments(block, meta.apply)
	}
	return meta, nil
}

func readWindow(r io.ReaderAt, offset, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	n, err := r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read gcode: %w", err)
	}
	return buf[:n], nil
}

// DetectSlicer inspects the first comment lines of a file.
func DetectSlicer(head []byte) (Slicer, string) {
	scanner := bufio.NewScanner(bytes.NewReader(head))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for lines := 0; scanner.Scan() && lines < 40; lines++ {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ";") {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, ";"))
		lower := strings.ToLower(text)
		for _, candidate := range []Slicer{SlicerPrusa, SlicerOrca, SlicerBambu} {
			name := strings.ToLower(string(candidate))
			idx := strings.Index(lower, name)
			if idx < 0 {
				continue
			}
			if candidate != SlicerBambu && !strings.Contains(lower, "generated by") {
				continue
			}
			return candidate, versionAfter(text[idx+len(name):])
		}
	}
	return SlicerUnknown, ""
}

func versionAfter(rest string) string {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	version := strings.TrimPrefix(fields[0], "-")
	if version == "" || !strings.ContainsAny(version[:1], "0123456789v") {
		return ""
	}
	return version
}

func scanComments(block []byte, apply func(key, value string)) {
	scanner := bufio.NewScanner(bytes.NewReader(block))
	scanner.Buffer(make([]byte, 0, 64<<10), 4<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := splitComment(strings.TrimPrefix(line, ";"))
		if ok {
			apply(key, value)
		}
	}
}

// splitComment splits "key = value" or "key : value". The separator must be
// surrounded by spaces so values such as times ("1h 2m") or URLs are not cut.
func splitComment(text string) (string, string, bool) {
	for _, sep := range []string{" = ", " : "} {
		if key, value, found := strings.Cut(text, sep); found {
			return strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value), true
		}
	}
	return "", "", false
}

func (m *Metadata) apply(key, value string) {
	switch key {
	case "filament used [g]":
		if weights := parseFloats(value); len(weights) > 0 {
			m.FilamentWeights = weights
		}
	case "total filament weight [g]", "total filament used [g]":
		if weights := parseFloats(value); len(weights) > 0 {
			total := weights[0]
			m.TotalWeight = &total
		}
	case "filament_settings_id":
		if names := splitList(value); len(names) > 0 {
			m.FilamentNames = names
		}
	case "filament_type":
		if types := splitList(value); len(types) > 0 {
			m.FilamentTypes = types
		}
	}
}

func parseFloats(value string) []float64 {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' || r == ' ' })
	out := make([]float64, 0, len(fields))
	for _, field := range fields {
		parsed, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil
		}
		out = append(out, parsed)
	}
	return out
}

// splitList splits on ',' and ';', honouring double-quoted items with \"
// escapes, and drops empty items.
func splitList(value string) []string {
	var items []string
	var current strings.Builder
	quoted, escaped := false, false
	flush := func() {
		if item := strings.TrimSpace(current.String()); item != "" {
			items = append(items, item)
		}
		current.Reset()
	}
	for _, r := range value {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ',' || r == ';'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return items
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joeycumines/jseditorx/internal/storage"
)

// configLines is a config file split into lines, edited in place so comments
// and section layout survive a rewrite.
type configLines []string

func readConfigLines(path string) (configLines, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return strings.Split(string(data), "\n"), nil
}

// findGlobal returns the index of key in the global section (or -1), and the
// index of the first section header (or len(lines)).
func (lines configLines) findGlobal(key string) (at, firstSection int) {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			return -1, i
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if name, _, _ := strings.Cut(trimmed, " "); name == key {
			return i, -1
		}
	}
	return -1, len(lines)
}

func (lines configLines) write(path string) error {
	return storage.AtomicWriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

func formatOption(key, value string) string {
	if value == "" {
		return key
	}
	return key + " " + value
}

// SetKeyInFile updates or adds a global option in the config file. An
// existing global line for key is replaced in place; otherwise the option is
// inserted before the first section header, or appended. Keys inside
// [section] blocks are never touched.
func SetKeyInFile(path, key, value string) error {
	lines, err := readConfigLines(path)
	if err != nil {
		return err
	}

	at, firstSection := lines.findGlobal(key)
	switch {
	case at >= 0:
		lines[at] = formatOption(key, value)
	case firstSection < len(lines):
		lines = slices.Insert(lines, firstSection, formatOption(key, value))
	case len(lines) > 0 && lines[len(lines)-1] == "":
		// keep the trailing newline last
		lines = slices.Insert(lines, len(lines)-1, formatOption(key, value))
	default:
		lines = append(lines, formatOption(key, value))
	}

	return lines.write(path)
}

// RemoveKeyInFile deletes a global option from the config file. It reports
// whether the key was present; a missing file or key is not an error.
func RemoveKeyInFile(path, key string) (bool, error) {
	lines, err := readConfigLines(path)
	if err != nil {
		return false, err
	}
	at, _ := lines.findGlobal(key)
	if at < 0 {
		return false, nil
	}
	lines = slices.Delete(lines, at, at+1)
	return true, lines.write(path)
}

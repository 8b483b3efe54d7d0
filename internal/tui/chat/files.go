package chat

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	core "github.com/railtel/railgpt/internal/chat"
	"github.com/railtel/railgpt/internal/ui"
)

// attachFile stages a single file for the next question.
func (m *Model) attachFile(path string) (tea.Model, tea.Cmd) {
	staged, err := core.StageFile(path)
	if err != nil {
		return m.showNotice(fmt.Sprintf("Failed to attach: %v", err))
	}
	for _, f := range m.files {
		if f.Path == staged.Path {
			return m.showNotice(fmt.Sprintf("%s is already attached.", staged.Name))
		}
	}
	m.files = append(m.files, staged)
	m.textarea.SetValue("")
	return m.showNotice(fmt.Sprintf("Attached %s (%s).", staged.Name, ui.FormatFileSize(staged.Size)))
}

// attachFiles stages every file matching a glob pattern.
func (m *Model) attachFiles(pattern string) (tea.Model, tea.Cmd) {
	paths, err := ExpandGlob(pattern)
	if err != nil {
		return m.showNotice(fmt.Sprintf("Failed to attach: %v", err))
	}

	added := 0
	for _, path := range paths {
		staged, err := core.StageFile(path)
		if err != nil {
			continue
		}
		dup := false
		for _, f := range m.files {
			if f.Path == staged.Path {
				dup = true
				break
			}
		}
		if !dup {
			m.files = append(m.files, staged)
			added++
		}
	}
	m.textarea.SetValue("")
	return m.showNotice(fmt.Sprintf("Attached %d file(s) matching %s.", added, pattern))
}

// ExpandGlob expands a glob pattern to matching files
func ExpandGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}

	if len(matches) == 0 {
		// Try as a literal path
		if _, err := os.Stat(pattern); err == nil {
			return []string{pattern}, nil
		}
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}

	// Filter out directories
	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, match)
		}
	}

	return files, nil
}

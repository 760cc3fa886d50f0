package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/steveyegge/mentor/internal/admission"
	"github.com/steveyegge/mentor/internal/rules"
	"github.com/steveyegge/mentor/internal/types"
)

// languageByExt maps file extensions to language identifiers
var languageByExt = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".rb":   "ruby",
	".rs":   "rust",
	".c":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
}

// detectLanguage returns the language identifier for a file path
func detectLanguage(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "text"
}

// changeFromFile builds a CodeChange from a file's current content and the
// previously observed content (empty for first sight).
func changeFromFile(path, previous string) (types.CodeChange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.CodeChange{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)

	curLines := strings.Count(content, "\n") + 1
	prevLines := 0
	if previous != "" {
		prevLines = strings.Count(previous, "\n") + 1
	}

	kind := types.ChangeModification
	linesChanged := curLines - prevLines
	switch {
	case previous == "":
		kind = types.ChangeAddition
		linesChanged = curLines
	case linesChanged < 0:
		kind = types.ChangeDeletion
		linesChanged = -linesChanged
	case linesChanged == 0:
		// Same line count, assume a single-line edit
		linesChanged = 1
	}

	return types.CodeChange{
		Content:         content,
		PreviousContent: previous,
		FilePath:        path,
		Language:        detectLanguage(path),
		Kind:            kind,
		LinesChanged:    linesChanged,
	}, nil
}

// loadTable loads the rule table from --rules or falls back to defaults
func loadTable() (*rules.Table, error) {
	if rulesPath == "" {
		return rules.DefaultTable(), nil
	}
	return rules.LoadFile(rulesPath)
}

// newController builds a controller from the environment and rule flags
func newController(opts ...admission.Option) (*admission.Controller, error) {
	table, err := loadTable()
	if err != nil {
		return nil, err
	}
	return admission.NewController(admission.LoadFromEnv(), table, opts...)
}

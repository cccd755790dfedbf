// Package config holds the per-run settings value object together with the
// optional application configuration file loaded through viper.
package config

import (
	"strings"

	"github.com/temirov/treeson/internal/utils"
)

// hiddenNamePrefix marks names treated as hidden on the filesystems we target.
const hiddenNamePrefix = "."

// defaultIgnoreNames is the process-wide constant table of names excluded
// from every conversion unless the hidden flag or user additions say otherwise.
var defaultIgnoreNames = []string{
	".git",
	"__pycache__",
	".DS_Store",
	"node_modules",
	"venv",
	".venv",
	".idea",
	".pytest_cache",
	".mypy_cache",
	".tox",
	"dist",
	"build",
	"*.egg-info",
}

// Settings is the immutable per-run configuration shared by the traverser and
// the builder. It is constructed once from defaults merged with user-supplied
// additions and never mutated afterwards.
type Settings struct {
	ignoreNameSet  map[string]struct{}
	ignoreNameList []string
	includeHidden  bool
	maxDepth       *int
}

// NewSettings merges the default ignore table with additionalIgnores and
// returns the resulting settings value. A nil maxDepth means unlimited depth.
func NewSettings(additionalIgnores []string, includeHidden bool, maxDepth *int) Settings {
	mergedIgnores := make([]string, 0, len(defaultIgnoreNames)+len(additionalIgnores))
	mergedIgnores = append(mergedIgnores, defaultIgnoreNames...)
	for _, additionalIgnore := range additionalIgnores {
		trimmedIgnore := strings.TrimSpace(additionalIgnore)
		if trimmedIgnore == "" {
			continue
		}
		mergedIgnores = append(mergedIgnores, trimmedIgnore)
	}
	mergedIgnores = utils.DeduplicateStrings(mergedIgnores)

	ignoreNameSet := make(map[string]struct{}, len(mergedIgnores))
	for _, ignoreName := range mergedIgnores {
		ignoreNameSet[ignoreName] = struct{}{}
	}

	return Settings{
		ignoreNameSet:  ignoreNameSet,
		ignoreNameList: mergedIgnores,
		includeHidden:  includeHidden,
		maxDepth:       cloneInt(maxDepth),
	}
}

// ShouldIgnore reports whether a file or directory name is excluded from
// output. A name is ignored when it is hidden while hidden names are not
// included, or when it exactly matches a configured ignore name.
func (settings Settings) ShouldIgnore(entryName string) bool {
	if !settings.includeHidden && strings.HasPrefix(entryName, hiddenNamePrefix) {
		return true
	}
	_, ignoreMatched := settings.ignoreNameSet[entryName]
	return ignoreMatched
}

// WithinDepth reports whether a directory at currentDepth may still have its
// children listed. Depth zero with a maximum depth of zero is already out of
// bounds, which makes the depth check cheaper than listing the directory.
func (settings Settings) WithinDepth(currentDepth int) bool {
	return settings.maxDepth == nil || currentDepth < *settings.maxDepth
}

// IgnoreNames returns the merged ignore names in precedence order.
func (settings Settings) IgnoreNames() []string {
	return append([]string{}, settings.ignoreNameList...)
}

// IncludeHidden reports whether leading-dot names are part of the output.
func (settings Settings) IncludeHidden() bool {
	return settings.includeHidden
}

// MaxDepth returns the configured maximum depth, or nil when unlimited.
func (settings Settings) MaxDepth() *int {
	return cloneInt(settings.maxDepth)
}

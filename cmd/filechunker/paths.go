package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bmatcuk/doublestar/v4"
)

func isRemote(location string) bool {
	for _, scheme := range []string{"s3://", "http://", "https://"} {
		if strings.HasPrefix(location, scheme) {
			return true
		}
	}
	return false
}

// expandLocations resolves glob patterns in local locations to the matching files.
// Remote locations and plain paths are kept as they are.
func expandLocations(locations []string, pathModifier pathutil.PathModifier, logger log.Logger) []string {
	var expanded []string
	for _, location := range locations {
		if isRemote(location) || !strings.Contains(location, "*") {
			expanded = append(expanded, location)
			continue
		}

		pattern := strings.TrimPrefix(location, "file://")
		base, rel := doublestar.SplitPattern(pattern)
		absBase, err := pathModifier.AbsPath(base)
		if err != nil {
			logger.Warnf("Failed to resolve base of pattern %s: %s", location, err)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(absBase), rel, doublestar.WithNoFollow(), doublestar.WithFilesOnly())
		if err != nil {
			logger.Warnf("Error in path pattern '%s': %s", location, err)
			continue
		}
		if len(matches) == 0 {
			logger.Warnf("No match for path pattern: %s", location)
			continue
		}

		for _, match := range matches {
			expanded = append(expanded, filepath.Join(absBase, match))
		}
	}

	return expanded
}

package importer

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	drivePrefix = regexp.MustCompile(`^([A-Za-z])_`)
	// the label may be followed by line breaks before the key itself
	recoveryKeyLine = regexp.MustCompile(`(?i)recovery\s*key\s*:\s*([0-9][0-9\- \t]*[0-9])`)
	blanks          = strings.NewReplacer(" ", "", "\t", "")
)

// ParseDriveLetter derives the drive from a file name of the form
// "C_anything.txt". Directories are ignored.
func ParseDriveLetter(filename string) (string, bool) {
	m := drivePrefix.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]) + ":", true
}

// ParseRecoveryKey extracts the numeric key following a "Recovery Key:"
// label. Spaces and tabs inside the key are removed.
func ParseRecoveryKey(content string) (string, bool) {
	m := recoveryKeyLine.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return blanks.Replace(m[1]), true
}

package core

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ContainsFold reports whether `substr` is within `s`, ignoring case.
// `substr` is trimmed first; an empty `substr` always matches.
func ContainsFold(s, substr string) bool {
	substr = CleanString(substr, true /* lower */)
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), substr)
}

// Initials returns up to two upper-cased initials of a name: "ana ruiz" -> "AR", "ana" -> "AN".
func Initials(name string) string {
	parts := strings.Fields(name)
	switch {
	case len(parts) >= 2:
		first, _ := firstRune(parts[0])
		second, _ := firstRune(parts[1])
		return strings.ToUpper(string([]rune{first, second}))
	case len(parts) == 1:
		runes := []rune(parts[0])
		if len(runes) > 2 {
			runes = runes[:2]
		}
		return strings.ToUpper(string(runes))
	default:
		return ""
	}
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return unicode.ToUpper(r), true
	}
	return 0, false
}

// Getwd tries to find the project root, the closest parent directory holding a go.mod.
// go-test changes the working directory to the test package being run during tests,
// falls back to the current working directory when no go.mod is found (eg: deployed binary).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// Package template expands a rule's destination template against
// source-path-derived and time-derived variables. The brace-scan-
// then-substitute approach and the "reject unexpanded placeholders"
// check follow template.Expander's lead; the variable set and the
// explicit clock parameter are new, so the same (rule, path,
// clock-reading) tuple always expands identically.
package template

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/ferrors"
)

// Expand produces rule.DestRoot joined with the expanded template
// string. now is read exactly once by the caller (the Planner) per
// create_plan call and threaded through every expansion in that
// batch.
func Expand(rule types.Rule, sourcePath string, now time.Time) (string, error) {
	vars := variablesFor(rule, sourcePath, now)
	expanded, err := substitute(rule.Template, vars)
	if err != nil {
		return "", err
	}
	return filepath.Join(rule.DestRoot, expanded), nil
}

// ExpandRestricted implements the Scanner's preview expansion, which
// may only use variables derivable without side-effects: name,
// parent, drive, yyyy, yyyyMM, label.
func ExpandRestricted(rule types.Rule, sourcePath string, now time.Time) (string, error) {
	full := variablesFor(rule, sourcePath, now)
	restricted := map[string]string{
		"name":    full["name"],
		"parent":  full["parent"],
		"drive":   full["drive"],
		"yyyy":    full["yyyy"],
		"yyyyMM":  full["yyyyMM"],
		"label":   full["label"],
	}
	expanded, err := substitute(rule.Template, restricted)
	if err != nil {
		return "", err
	}
	return filepath.Join(rule.DestRoot, expanded), nil
}

func variablesFor(rule types.Rule, sourcePath string, now time.Time) map[string]string {
	name := filepath.Base(sourcePath)
	parentDir := filepath.Dir(sourcePath)
	parent := ""
	if parentDir != "." && parentDir != string(filepath.Separator) {
		parent = filepath.Base(parentDir)
	}

	utc := now.UTC()
	return map[string]string{
		"name":       name,
		"parent":     parent,
		"drive":      driveLetter(sourcePath),
		"depth":      strconv.Itoa(len(strings.Split(filepath.ToSlash(filepath.Clean(sourcePath)), "/"))),
		"ext":        strings.TrimPrefix(filepath.Ext(name), "."),
		"yyyy":       fmt.Sprintf("%04d", utc.Year()),
		"yy":         fmt.Sprintf("%02d", utc.Year()%100),
		"MM":         fmt.Sprintf("%02d", int(utc.Month())),
		"dd":         fmt.Sprintf("%02d", utc.Day()),
		"yyyyMM":     fmt.Sprintf("%04d%02d", utc.Year(), int(utc.Month())),
		"yyyyMMdd":   fmt.Sprintf("%04d%02d%02d", utc.Year(), int(utc.Month()), utc.Day()),
		"label":      rule.Label,
	}
}

// driveLetter returns the first letter of the volume prefix,
// uppercase, or empty. filepath.VolumeName handles the Windows
// "C:" / UNC-share case; on POSIX it always returns "".
func driveLetter(path string) string {
	vol := filepath.VolumeName(path)
	vol = strings.TrimSuffix(vol, ":")
	if vol == "" {
		return ""
	}
	return strings.ToUpper(vol[:1])
}

// substitute implements the fixed brace syntax: '{' starts a
// variable, its contents must match [A-Za-z0-9_]+, '}' closes it.
// Unterminated braces and unknown variables are Config errors.
func substitute(tmpl string, vars map[string]string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		if c != '{' {
			out.WriteByte(c)
			i++
			continue
		}

		end := strings.IndexByte(tmpl[i+1:], '}')
		if end < 0 {
			return "", ferrors.New(ferrors.KindConfig, "template: unterminated '{' at offset %d in %q", i, tmpl)
		}
		name := tmpl[i+1 : i+1+end]
		if name == "" || !isValidVarName(name) {
			return "", ferrors.New(ferrors.KindConfig, "template: invalid variable name %q in %q", name, tmpl)
		}
		value, ok := vars[name]
		if !ok {
			return "", ferrors.New(ferrors.KindConfig, "template: unknown variable {%s} in %q", name, tmpl)
		}
		out.WriteString(value)
		i = i + 1 + end + 1
	}
	return out.String(), nil
}

func isValidVarName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

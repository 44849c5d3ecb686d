// Package iniconf tokenizes the fabric's INI configuration file. It exists
// standalone (rather than leaning on an ecosystem INI library) because the
// format requires duplicate (section,key) detection that reports the
// offending line number, which no INI library in the dependency pack
// surfaces — see DESIGN.md.
package iniconf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nabbar/svc-fabric/errors"
	"github.com/nabbar/svc-fabric/internal/errs"
)

const (
	ErrDuplicateKey errors.CodeError = iota + errors.MinPkgIniConf
	ErrBadLine
)

func init() {
	errors.RegisterIdFctMessage(ErrDuplicateKey, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrDuplicateKey:
		return "duplicate key in configuration file"
	case ErrBadLine:
		return "malformed configuration line"
	}
	return ""
}

const defaultSection = ""

// Tree is a parsed INI file: section name -> key -> value. The default
// (pre-header) section is keyed by the empty string.
type Tree map[string]map[string]string

// Get returns the value for section.key, or "" with ok=false if absent.
func (t Tree) Get(section, key string) (string, bool) {
	sec, ok := t[section]
	if !ok {
		return "", false
	}
	v, ok := sec[key]
	return v, ok
}

// Flatten returns a "section.key" -> value map suitable for seeding a
// viper instance via AddConfigMap-style loading.
func (t Tree) Flatten() map[string]interface{} {
	out := make(map[string]interface{})
	for section, kv := range t {
		for k, v := range kv {
			if section == defaultSection {
				out[k] = v
			} else {
				out[section+"."+k] = v
			}
		}
	}
	return out
}

// Parse reads an INI document. Case-sensitive sections/keys, '#' full-line
// comments, ';' trailing comments, blank lines ignored, key/value separated
// by '=' or ':'. A duplicate (section,key) pair is a parse error naming the
// line number of the second occurrence.
func Parse(r io.Reader) (Tree, error) {
	tree := make(Tree)
	section := defaultSection
	tree[section] = make(map[string]string)

	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, lineError(lineNo, ErrBadLine)
			}
			section = strings.TrimSpace(line[1 : len(line)-1])
			if _, ok := tree[section]; !ok {
				tree[section] = make(map[string]string)
			}
			continue
		}

		key, val, ok := splitKV(line)
		if !ok {
			return nil, lineError(lineNo, ErrBadLine)
		}

		if _, exists := tree[section][key]; exists {
			return nil, lineError(lineNo, ErrDuplicateKey)
		}

		tree[section][key] = val
	}

	if e := sc.Err(); e != nil {
		return nil, errs.ErrConfiguration.Error(e)
	}

	return tree, nil
}

// lineError reports a parse failure at lineNo, naming both the offending
// rule (cause) and errs.ErrConfiguration's code. It builds the message
// directly rather than via errs.ErrConfiguration.Error(parent), because a
// coded error renders only its top-level message — the line number has to
// live in the message itself to survive into Error().
func lineError(lineNo int, cause errors.CodeError) error {
	return errors.New(
		errs.ErrConfiguration.Uint16(),
		fmt.Sprintf("%s: line %d: %s", errs.ErrConfiguration.Message(), lineNo, cause.Message()),
	)
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i == 0 {
		return ""
	}

	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}

	return line
}

func splitKV(line string) (key, val string, ok bool) {
	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return "", "", false
	}

	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

// ParseBool mirrors the fabric's INI boolean vocabulary:
// "true"/"on" and "false"/"off", case-insensitive.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on":
		return true, true
	case "false", "off":
		return false, true
	default:
		return false, false
	}
}

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// SettingsDir is the per-folder directory holding DOK Dsc state.
	SettingsDir = ".dokd"

	// SettingsFile is the settings file name inside SettingsDir.
	SettingsFile = "settings.json"
)

var (
	// ErrInvalidSettings is returned when the settings file is not usable.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrNoCollections is returned when the settings declare no collections field.
	ErrNoCollections = errors.New("no collections declared")
)

// Collection is a named buildable and publishable unit.
type Collection struct {
	Name string `json:"name" yaml:"name"`
}

// Settings is the deserialized content of .dokd/settings.json.
type Settings struct {
	Collections []Collection `json:"collections" yaml:"collections"`
}

// SettingsPath returns the settings file path for a folder root.
func SettingsPath(root string) string {
	return filepath.Join(root, SettingsDir, SettingsFile)
}

// LoadSettings reads and parses the settings file of a folder root.
// A missing file yields an error matching fs.ErrNotExist.
func LoadSettings(root string) (*Settings, error) {
	path := SettingsPath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	settings, err := ParseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// ParseSettings parses settings JSON.
//
// The collections field must be present and truthy; null, false, 0 and ""
// count as absent and yield ErrNoCollections. When the field is repeated
// the last occurrence wins. A collections value that is not an array, or
// that holds a null entry, is ErrInvalidSettings. Other entries always
// yield a collection: names are rendered the way JavaScript converts a
// value to a string, so {"name":5} is "5" and {} is "undefined".
func ParseSettings(data []byte) (*Settings, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidSettings)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNoCollections
	}

	collections := lastField(root, "collections")
	if !truthy(collections) {
		return nil, ErrNoCollections
	}
	if !collections.IsArray() {
		return nil, fmt.Errorf("%w: collections is not an array", ErrInvalidSettings)
	}

	settings := &Settings{Collections: []Collection{}}
	var entryErr error
	index := 0
	collections.ForEach(func(_, entry gjson.Result) bool {
		if entry.Type == gjson.Null {
			entryErr = fmt.Errorf("%w: collection %d is null", ErrInvalidSettings, index)
			return false
		}
		index++
		name := gjson.Result{}
		if entry.IsObject() {
			name = lastField(entry, "name")
		}
		settings.Collections = append(settings.Collections, Collection{Name: jsString(name)})
		return true
	})
	if entryErr != nil {
		return nil, entryErr
	}

	return settings, nil
}

// lastField returns the last member of obj named key. Duplicate keys
// resolve the way JSON.parse resolves them.
func lastField(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}

// jsString converts a JSON value to a string as JavaScript's String does.
// A missing value is "undefined".
func jsString(r gjson.Result) string {
	if !r.Exists() {
		return "undefined"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False:
		return "false"
	case gjson.True:
		return "true"
	case gjson.Number:
		return strconv.FormatFloat(r.Num, 'f', -1, 64)
	case gjson.String:
		return r.Str
	}
	if r.IsArray() {
		var parts []string
		r.ForEach(func(_, v gjson.Result) bool {
			if v.Type == gjson.Null {
				parts = append(parts, "")
			} else {
				parts = append(parts, jsString(v))
			}
			return true
		})
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

// truthy mirrors JavaScript truthiness for a JSON value.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}

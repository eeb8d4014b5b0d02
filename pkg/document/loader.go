package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable consulted first when
// discovering the configuration file.
const EnvConfigPath = "CLIPSE_APP_CONFIG"

// defaultCandidates are the working-directory files tried when neither the
// environment nor an explicit path names a config.
var defaultCandidates = []string{".clipse", "clipse"}

// Discover resolves the configuration path using the discovery rules:
//  1. the CLIPSE_APP_CONFIG environment variable
//  2. the explicit path (e.g. from a --config flag)
//  3. ./.clipse
//  4. ./clipse
func Discover(explicit string) (string, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
	}
	if explicit != "" {
		return explicit, nil
	}
	for _, cand := range defaultCandidates {
		if _, err := os.Stat(cand); err == nil {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no config found: use --config, set %s, or place ./.clipse", EnvConfigPath)
}

// Load reads and parses a raw document from a file path. The extension
// selects the parser; unknown extensions fall back to content sniffing.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	default:
		return parse(data)
	}
}

// LoadReader reads and parses a raw document from a reader, sniffing the
// format from the content.
func LoadReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

// parse guesses JSON vs YAML from the first non-space byte. YAML is a
// superset of JSON here, but going through encoding/json for JSON input
// keeps number handling consistent with the schema validator.
func parse(data []byte) (map[string]any, error) {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "{") {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseJSON(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON config: %w", err)
	}
	return raw, nil
}

func parseYAML(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML config: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Decode converts a raw document tree into the typed model and validates
// the declarations with struct tags. The tree must already have references
// and variables resolved; residual $ref markers fail the round trip.
func Decode(raw map[string]any) (*Document, error) {
	buf, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode document: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if err := validateModel(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validateModel runs struct-tag validation over every declared field and
// custom rule in the document.
func validateModel(doc *Document) error {
	v := validator.New()

	check := func(scope, id string, field *Field) error {
		if err := v.Struct(field); err != nil {
			return fmt.Errorf("%s.%s: invalid declaration: %w", scope, id, err)
		}
		return nil
	}
	checkFields := func(scope string, fields map[string]*Field) error {
		for id, f := range fields {
			if f == nil {
				continue
			}
			if err := check(scope, id, f); err != nil {
				return err
			}
		}
		return nil
	}
	checkConstraints := func(scope string, c *Constraints) error {
		if c == nil {
			return nil
		}
		for _, rule := range c.Custom {
			if err := v.Struct(rule); err != nil {
				return fmt.Errorf("%s: invalid custom rule: %w", scope, err)
			}
		}
		return nil
	}
	checkAction := func(scope string, act *Action) error {
		if act == nil {
			return nil
		}
		if err := checkFields(scope+".options", act.Options); err != nil {
			return err
		}
		if err := checkFields(scope+".positionals", act.Positionals); err != nil {
			return err
		}
		return checkConstraints(scope, act.Constraints)
	}

	if err := checkFields("global.options", doc.Global.Options); err != nil {
		return err
	}
	for id, obj := range doc.Objects {
		if obj == nil {
			continue
		}
		scope := "objects." + id
		if err := checkFields(scope+".options", obj.Options); err != nil {
			return err
		}
		if err := checkFields(scope+".positionals", obj.Positionals); err != nil {
			return err
		}
		if err := checkConstraints(scope, obj.Constraints); err != nil {
			return err
		}
		for actID, act := range obj.Actions {
			if err := checkAction(scope+".actions."+actID, act); err != nil {
				return err
			}
		}
	}
	for id, act := range doc.Actions {
		if err := checkAction("actions."+id, act); err != nil {
			return err
		}
	}
	return nil
}

package i18n

import (
	"strings"

	"gopkg.in/yaml.v2"
)

// yamlDictionary is a catalog.Dictionary over a flat yml file mapping source messages to
// their translation
type yamlDictionary struct {
	entries map[string]string
}

func (d *yamlDictionary) Lookup(key string) (data string, ok bool) {
	value, ok := d.entries[key]
	if !ok {
		return "", false
	}
	// catalog expects raw strings to start with STX
	return "\x02" + value, true
}

// parseYAMLDict skips keys left untranslated, so they fall back to the fallback language
// instead of rendering blank
func parseYAMLDict(file []byte) (*yamlDictionary, error) {
	data := map[string]string{}
	if err := yaml.Unmarshal(file, &data); err != nil {
		return nil, err
	}

	entries := make(map[string]string, len(data))
	for key, value := range data {
		if strings.TrimSpace(value) == "" {
			continue
		}
		entries[key] = value
	}
	return &yamlDictionary{entries: entries}, nil
}

// Package seed loads bookmarks from a YAML file into an empty store at startup.
package seed

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
)

// templateVar matches Homepage template variables ({{HOMEPAGE_VAR_...}}).
var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads a seed file in either the native format or Homepage's bookmarks.yaml format.
type Loader struct {
	filePath      string
	defaultRating int
}

// NewLoader creates a loader. defaultRating is used for Homepage entries, which carry none.
func NewLoader(filePath string, defaultRating int) *Loader {
	return &Loader{filePath: filePath, defaultRating: defaultRating}
}

// Load reads the file and returns one unvalidated input per bookmark, in file order.
func (l *Loader) Load() ([]domain.Input, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return l.parse(data)
}

func (l *Loader) parse(data []byte) ([]domain.Input, error) {
	data = stripTemplateVariables(data)

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return []domain.Input{}, nil
	}

	switch root.Content[0].Kind {
	case yaml.MappingNode:
		var f File
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode seed file: %w", err)
		}
		inputs := make([]domain.Input, 0, len(f.Bookmarks))
		for _, b := range f.Bookmarks {
			inputs = append(inputs, domain.Input(b))
		}
		return inputs, nil

	case yaml.SequenceNode:
		var cfg HomepageConfig
		if err := root.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode homepage bookmarks: %w", err)
		}
		return mapHomepage(cfg, l.defaultRating), nil

	default:
		return nil, fmt.Errorf("unsupported seed file layout")
	}
}

// mapHomepage turns Homepage bookmarks into inputs. The bookmark name becomes the title and
// the category (plus abbreviation, when set) the description. Entries without href are kept so
// that validation reports them.
func mapHomepage(cfg HomepageConfig, rating int) []domain.Input {
	inputs := make([]domain.Input, 0)
	for _, category := range cfg {
		for categoryName, list := range category {
			for _, bookmark := range list {
				for name, entries := range bookmark {
					if len(entries) == 0 {
						continue
					}
					e := entries[0]

					desc := e.Description
					if desc == "" {
						desc = categoryName
						if e.Abbr != "" {
							desc += " (" + e.Abbr + ")"
						}
					}
					inputs = append(inputs, domain.Input{
						domain.FieldTitle:       name,
						domain.FieldURL:         e.Href,
						domain.FieldDescription: desc,
						domain.FieldRating:      rating,
					})
				}
			}
		}
	}
	return inputs
}

// stripTemplateVariables replaces Homepage template variables with empty strings.
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}

package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"finitefield.org/cv-web/internal/i18n"
)

// DefaultDir is the local content directory.
const DefaultDir = "content"

// Name identifies a content document.
type Name string

const (
	Personal  Name = "personal"
	Career    Name = "career"
	Education Name = "education"
	Skills    Name = "skills"
	Projects  Name = "projects"
	UIText    Name = "ui_text"
)

// Documents lists every document a page needs.
var Documents = []Name{Personal, Career, Education, Skills, Projects, UIText}

// Critical documents trigger the page-wide banner when all of them fail.
var Critical = []Name{Personal, Career, Education, Skills}

// Strategy selects how documents map to files. One deployment uses exactly one.
type Strategy string

const (
	// PerLanguage stores one file per document and language: career_en.yaml.
	// personal.yaml is shared by all languages.
	PerLanguage Strategy = "per_language"
	// LanguageKeyed stores one file per document whose root maps language to
	// section. ui_text uses the inverse shape key -> language -> text.
	LanguageKeyed Strategy = "language_keyed"
)

// ParseStrategy accepts the strategy names used in configuration.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PerLanguage:
		return PerLanguage, nil
	case LanguageKeyed:
		return LanguageKeyed, nil
	default:
		return "", fmt.Errorf("content: unknown strategy %q", raw)
	}
}

// Path returns the source path of name for lang.
func (s Strategy) Path(name Name, lang i18n.Code) string {
	if s == LanguageKeyed {
		return string(name) + ".yml"
	}
	if name == Personal {
		return string(name) + ".yaml"
	}
	return fmt.Sprintf("%s_%s.yaml", name, lang)
}

// CacheKey returns "name" for shared files and "name|lang" for per-language files.
func (s Strategy) CacheKey(name Name, lang i18n.Code) string {
	if s == PerLanguage && name != Personal {
		return string(name) + "|" + string(lang)
	}
	return string(name)
}

// LanguageScoped reports whether the document content differs per language.
// Under LanguageKeyed every document is scoped even though the file is shared,
// so switching language re-extracts from the cached file without a new read.
func (s Strategy) LanguageScoped(name Name) bool {
	if s == LanguageKeyed {
		return true
	}
	return name != Personal
}

// Document is one parsed content document, already narrowed to its language.
type Document struct {
	Name     Name
	Language i18n.Code // empty for language independent documents
	node     *yaml.Node
}

// Decode unmarshals the document body into v.
func (d *Document) Decode(v any) error {
	if d == nil || d.node == nil {
		return fmt.Errorf("content: nil document")
	}
	return d.node.Decode(v)
}

// Node exposes the parsed YAML node.
func (d *Document) Node() *yaml.Node {
	if d == nil {
		return nil
	}
	return d.node
}

// NewDocument parses raw YAML into a Document. It is mostly useful in tests.
func NewDocument(name Name, lang i18n.Code, raw []byte) (*Document, error) {
	root, err := parseRoot(raw)
	if err != nil {
		return nil, err
	}
	return &Document{Name: name, Language: lang, node: root}, nil
}

func parseRoot(raw []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, fmt.Errorf("empty document")
	}
	return root, nil
}

// narrow extracts the section for lang from a shared file's root.
func (s Strategy) narrow(name Name, lang i18n.Code, root *yaml.Node) (*yaml.Node, error) {
	if s != LanguageKeyed {
		return root, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping of languages, got %s", kindName(root.Kind))
	}
	if name == UIText {
		return invertUIText(root, lang)
	}
	section := mappingValue(root, string(lang))
	if section == nil {
		return nil, fmt.Errorf("language %q missing", lang)
	}
	return section, nil
}

// invertUIText turns key -> language -> text into key -> text for lang.
func invertUIText(root *yaml.Node, lang i18n.Code) (*yaml.Node, error) {
	out := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, byLang := root.Content[i], root.Content[i+1]
		if byLang.Kind != yaml.MappingNode {
			continue
		}
		if v := mappingValue(byLang, string(lang)); v != nil && v.Kind == yaml.ScalarNode {
			out[key.Value] = v.Value
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("language %q missing", lang)
	}
	var node yaml.Node
	if err := node.Encode(out); err != nil {
		return nil, err
	}
	return &node, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

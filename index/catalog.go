package index

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/lexandro/assetmod-mcp/assets"
	"github.com/lexandro/assetmod-mcp/option"
)

// Catalog provides name search over asset files using a Bleve in-memory index.
// It mirrors the asset registry by applying its changes.
type Catalog struct {
	mu      sync.RWMutex
	index   bleve.Index
	rootDir string
	docs    map[string]AssetDocument // key: absolute path
}

// AssetDocument is the document stored for every asset.
type AssetDocument struct {
	Path      string `json:"path"`      // relative to the root, forward slashes
	Name      string `json:"name"`      // base name split into words
	Dirs      string `json:"dirs"`      // directory segments split into words
	Extension string `json:"extension"` // with leading dot, lowercase
	Rule      string `json:"rule"`
}

// NewCatalog creates an empty in-memory catalog for assets below rootDir.
func NewCatalog(rootDir string) (*Catalog, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &Catalog{
		index:   bleveIndex,
		rootDir: rootDir,
		docs:    make(map[string]AssetDocument),
	}, nil
}

// buildIndexMapping indexes name and directory words as text; path,
// extension and rule are stored keywords.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"name", "dirs"} {
		textField := bleve.NewTextFieldMapping()
		textField.Store = false
		textField.IncludeInAll = true
		docMapping.AddFieldMappingsAt(field, textField)
	}

	for _, field := range []string{"path", "extension", "rule"} {
		keywordField := bleve.NewKeywordFieldMapping()
		keywordField.Store = true
		keywordField.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, keywordField)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// NewDocument builds the catalog document for an asset.
func NewDocument(rootDir string, absPath string, rule string) AssetDocument {
	relativePath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		relativePath = absPath
	}
	relativePath = filepath.ToSlash(relativePath)

	base := filepath.Base(absPath)
	ext := strings.ToLower(filepath.Ext(base))
	return AssetDocument{
		Path:      relativePath,
		Name:      strings.Join(splitWords(strings.TrimSuffix(base, filepath.Ext(base))), " "),
		Dirs:      strings.Join(splitWords(filepath.ToSlash(filepath.Dir(relativePath))), " "),
		Extension: ext,
		Rule:      rule,
	}
}

// Add adds or updates an asset.
func (c *Catalog) Add(absPath string, rule string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc := NewDocument(c.rootDir, absPath, rule)
	if err := c.index.Index(absPath, doc); err != nil {
		return fmt.Errorf("indexing asset %s: %w", absPath, err)
	}
	c.docs[absPath] = doc
	return nil
}

// Remove drops an asset. Unknown paths are ignored.
func (c *Catalog) Remove(absPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[absPath]; !ok {
		return nil
	}
	delete(c.docs, absPath)
	if err := c.index.Delete(absPath); err != nil {
		return fmt.Errorf("removing asset %s from index: %w", absPath, err)
	}
	return nil
}

// Apply mirrors a registry change.
func (c *Catalog) Apply(change assets.Change) error {
	switch change.Op {
	case assets.OpUpsert:
		return c.Add(change.Path, change.Rule.Name)
	case assets.OpDelete:
		return c.Remove(change.Path)
	}
	return nil
}

// AssetLister enumerates known assets and their rules.
type AssetLister interface {
	GetAssetFileNames() []string
	GetMatchedSuggestionRule(assetFilePath string) *option.SuggestionRule
}

// Load adds every asset currently known to source.
func (c *Catalog) Load(source AssetLister) error {
	for _, path := range source.GetAssetFileNames() {
		rule := source.GetMatchedSuggestionRule(path)
		if rule == nil {
			continue
		}
		if err := c.Add(path, rule.Name); err != nil {
			return err
		}
	}
	return nil
}

// DocumentCount returns the number of documents in the Bleve index.
func (c *Catalog) DocumentCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count, _ := c.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Close()
}

// splitWords breaks s at separators and lower-to-upper case changes, so
// "icons/arrowLeft_dark-2x" becomes icons arrow left dark 2x.
func splitWords(s string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			flush()
		}
		current = append(current, r)
	}
	flush()
	return words
}

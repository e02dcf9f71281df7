package index

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchOptions configures a catalog search.
type SearchOptions struct {
	Query      string
	Rule       string // restrict to assets matched by this rule
	Extension  string // restrict to one extension, e.g. ".svg"
	MaxResults int
}

// SearchResult is one matching asset.
type SearchResult struct {
	Path         string
	RelativePath string
	Rule         string
	Score        float64
}

// Search finds assets by name.
// Query format:
//   - Plain text: match query on name and directory words
//   - "quoted text": phrase query
//   - /regex/: regexp query on single words
//   - text with * or ?: wildcard query on single words
//
// It returns at most MaxResults hits and the total number of matches.
func (c *Catalog) Search(options SearchOptions) ([]SearchResult, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}

	conjuncts := []query.Query{buildQuery(options.Query)}
	if options.Rule != "" {
		ruleQuery := bleve.NewTermQuery(options.Rule)
		ruleQuery.SetField("rule")
		conjuncts = append(conjuncts, ruleQuery)
	}
	if options.Extension != "" {
		extQuery := bleve.NewTermQuery(strings.ToLower(options.Extension))
		extQuery.SetField("extension")
		conjuncts = append(conjuncts, extQuery)
	}

	var bleveQuery query.Query = conjuncts[0]
	if len(conjuncts) > 1 {
		bleveQuery = bleve.NewConjunctionQuery(conjuncts...)
	}

	searchRequest := bleve.NewSearchRequest(bleveQuery)
	searchRequest.Size = options.MaxResults

	searchResults, err := c.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		doc, ok := c.docs[hit.ID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Path:         hit.ID,
			RelativePath: doc.Path,
			Rule:         doc.Rule,
			Score:        hit.Score,
		})
	}
	return results, int(searchResults.Total), nil
}

// buildQuery parses the query string into a Bleve query. An empty query
// matches every asset.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if queryString == "" || queryString == "*" {
		return bleve.NewMatchAllQuery()
	}

	// Regex query: /pattern/
	if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2 {
		return bleve.NewRegexpQuery(strings.ToLower(queryString[1 : len(queryString)-1]))
	}

	// Phrase query: "exact phrase"
	if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2 {
		return bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
	}

	if strings.ContainsAny(queryString, "*?") {
		return bleve.NewWildcardQuery(strings.ToLower(queryString))
	}

	// Default: match query (word-level), split like indexed names
	return bleve.NewMatchQuery(strings.Join(splitWords(queryString), " "))
}

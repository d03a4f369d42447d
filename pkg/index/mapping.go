// ABOUTME: Search index schema for help documents
// ABOUTME: Field mappings and the schema version that forces rebuilds

package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SchemaVersion identifies the index schema. Any change to the field
// mappings below must bump this so existing indexes rebuild on next startup.
const SchemaVersion = "2"

// Document is one row in the search index. Identity matches the tree node ID.
// Sections carry title-only entries with an empty body.
type Document struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Breadcrumb string `json:"breadcrumb"`
	Category   string `json:"category"`
	HelpID     string `json:"help_id"`
	File       string `json:"file"`
}

// BuildIndexMapping constructs the bleve mapping for help documents
func BuildIndexMapping() (mapping.IndexMapping, error) {
	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true

	bodyField := bleve.NewTextFieldMapping()
	bodyField.Store = false // page text is re-extracted on demand, never served from the index

	breadcrumbField := bleve.NewTextFieldMapping()
	breadcrumbField.Store = true

	categoryField := bleve.NewTextFieldMapping()
	categoryField.Store = true
	categoryField.Analyzer = keyword.Name

	helpIDField := bleve.NewTextFieldMapping()
	helpIDField.Store = true
	helpIDField.Analyzer = keyword.Name

	fileField := bleve.NewTextFieldMapping()
	fileField.Store = true
	fileField.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", titleField)
	docMapping.AddFieldMappingsAt("body", bodyField)
	docMapping.AddFieldMappingsAt("breadcrumb", breadcrumbField)
	docMapping.AddFieldMappingsAt("category", categoryField)
	docMapping.AddFieldMappingsAt("help_id", helpIDField)
	docMapping.AddFieldMappingsAt("file", fileField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	return indexMapping, nil
}

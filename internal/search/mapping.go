package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for catalog documents:
// English-stemmed full text on names and descriptions, exact keyword matching
// for the type filter, numeric range fields for price and publish year.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Name is the primary search target.
	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = en.AnalyzerName
	nameField.Store = true
	nameField.IncludeTermVectors = true // for highlighting
	docMapping.AddFieldMappingsAt("name", nameField)

	// Descriptions and bios are searchable but not stored; they can be large
	// and the caller fetches the full record anyway.
	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = en.AnalyzerName
	descField.Store = false
	docMapping.AddFieldMappingsAt("description", descField)

	bioField := bleve.NewTextFieldMapping()
	bioField.Analyzer = en.AnalyzerName
	bioField.Store = false
	docMapping.AddFieldMappingsAt("bio", bioField)

	// Denormalized author name on books.
	authorField := bleve.NewTextFieldMapping()
	authorField.Analyzer = en.AnalyzerName
	authorField.Store = true
	authorField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author", authorField)

	// Exact-match fields.
	typeField := bleve.NewTextFieldMapping()
	typeField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeField)

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idField)

	inStockField := bleve.NewBooleanFieldMapping()
	inStockField.Store = true
	docMapping.AddFieldMappingsAt("in_stock", inStockField)

	// Numeric fields for range queries and sorting.
	priceField := bleve.NewNumericFieldMapping()
	priceField.Store = true
	docMapping.AddFieldMappingsAt("price", priceField)

	yearField := bleve.NewNumericFieldMapping()
	yearField.Store = true
	docMapping.AddFieldMappingsAt("publish_year", yearField)

	bookCountField := bleve.NewNumericFieldMapping()
	bookCountField.Store = true
	docMapping.AddFieldMappingsAt("book_count", bookCountField)

	createdAtField := bleve.NewNumericFieldMapping()
	createdAtField.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtField)

	updatedAtField := bleve.NewNumericFieldMapping()
	updatedAtField.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtField)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

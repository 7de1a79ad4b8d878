package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for puzzle documents.
//
// Names and notes get English stemming for natural recall. Answers and tag
// names use the keyword analyzer so "EXACT ANSWER" and compound tag names
// like "High priority" match as whole terms.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Name is the primary search target, boosted at query time
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	notesFieldMapping := bleve.NewTextFieldMapping()
	notesFieldMapping.Analyzer = en.AnalyzerName
	notesFieldMapping.Store = false
	notesFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("notes", notesFieldMapping)

	answerFieldMapping := bleve.NewTextFieldMapping()
	answerFieldMapping.Analyzer = keyword.Name
	answerFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("answer", answerFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Exact-match fields for filtering
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	huntFieldMapping := bleve.NewTextFieldMapping()
	huntFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("hunt_id", huntFieldMapping)

	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	isMetaFieldMapping := bleve.NewBooleanFieldMapping()
	isMetaFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("is_meta", isMetaFieldMapping)

	// Timestamps for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

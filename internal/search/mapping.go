package search

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Entry name: the primary search target.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	keywordsFieldMapping := bleve.NewTextFieldMapping()
	keywordsFieldMapping.Analyzer = en.AnalyzerName
	keywordsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("keywords", keywordsFieldMapping)

	// Camera models like "NIKON D500" should not be stemmed.
	cameraFieldMapping := bleve.NewTextFieldMapping()
	cameraFieldMapping.Analyzer = simple.Name
	cameraFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("camera_model", cameraFieldMapping)

	// Identifiers are exact-match only.
	albumFieldMapping := bleve.NewTextFieldMapping()
	albumFieldMapping.Analyzer = keyword.Name
	albumFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("album_id", albumFieldMapping)

	entryFieldMapping := bleve.NewTextFieldMapping()
	entryFieldMapping.Analyzer = keyword.Name
	entryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("entry_id", entryFieldMapping)

	createdFieldMapping := bleve.NewNumericFieldMapping()
	createdFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created", createdFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// buildQuery combines a free-text match over the searchable fields with an
// optional exact album filter.
func buildQuery(queryString, albumID string) query.Query {
	var textQuery query.Query
	if q := strings.TrimSpace(queryString); q == "" {
		textQuery = bleve.NewMatchAllQuery()
	} else {
		parts := make([]query.Query, 0, 3)
		for _, field := range []string{"name", "keywords", "camera_model"} {
			mq := bleve.NewMatchQuery(q)
			mq.SetField(field)
			parts = append(parts, mq)
		}
		textQuery = bleve.NewDisjunctionQuery(parts...)
	}

	if albumID == "" {
		return textQuery
	}
	albumQuery := bleve.NewTermQuery(albumID)
	albumQuery.SetField("album_id")
	return bleve.NewConjunctionQuery(textQuery, albumQuery)
}

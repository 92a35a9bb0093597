package fhir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearchBundle(t *testing.T) {
	resources := []map[string]interface{}{
		{"resourceType": "BodyStructure", "id": "abc"},
		{"resourceType": "BodyStructure"},
	}
	b, err := NewSearchBundle(resources, 2, "/fhir/BodyStructure?patient=p1")
	require.NoError(t, err)

	assert.Equal(t, "Bundle", b.ResourceType)
	assert.Equal(t, "searchset", b.Type)
	require.NotNil(t, b.Total)
	assert.Equal(t, 2, *b.Total)
	require.Len(t, b.Entry, 2)
	assert.Equal(t, "BodyStructure/abc", b.Entry[0].FullURL)
	assert.Empty(t, b.Entry[1].FullURL)
	assert.Equal(t, "match", b.Entry[0].Search.Mode)
	require.Len(t, b.Link, 1)
	assert.Equal(t, "self", b.Link[0].Relation)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b.Entry[0].Resource, &decoded))
	assert.Equal(t, "abc", decoded["id"])
}

func TestNewSearchBundle_Empty(t *testing.T) {
	b, err := NewSearchBundle(nil, 0, "")
	require.NoError(t, err)
	assert.Empty(t, b.Entry)
	assert.Empty(t, b.Link)
	assert.Equal(t, 0, *b.Total)
}

func TestOutcomes(t *testing.T) {
	nf := NotFoundOutcome("BodyStructure", "x")
	assert.Equal(t, "OperationOutcome", nf.ResourceType)
	assert.Equal(t, "not-found", nf.Issue[0].Code)
	assert.Equal(t, "BodyStructure/x not found", nf.Issue[0].Diagnostics)

	assert.Equal(t, "invalid", InvalidOutcome("bad").Issue[0].Code)
	assert.Equal(t, "processing", ErrorOutcome("boom").Issue[0].Code)
}

func TestCapabilityStatement(t *testing.T) {
	cs := NewCapabilityStatement(CSResource{
		Type:        "BodyStructure",
		Interaction: []CSInteraction{{Code: "search-type"}},
		SearchParam: []CSSearchParam{{Name: "patient", Type: "reference"}},
	})
	assert.Equal(t, "4.0.1", cs.FHIRVersion)
	require.Len(t, cs.Rest, 1)
	assert.Equal(t, "BodyStructure", cs.Rest[0].Resource[0].Type)
}

package fhir

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bundle is a searchset Bundle.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type"`
	Total        *int          `json:"total,omitempty"`
	Link         []BundleLink  `json:"link,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
}

type BundleLink struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
	Search   *BundleSearch   `json:"search,omitempty"`
}

type BundleSearch struct {
	Mode string `json:"mode,omitempty"`
}

// NewSearchBundle wraps resources in a searchset. Each resource must carry
// "resourceType" and "id" keys for its fullUrl to be set.
func NewSearchBundle(resources []map[string]interface{}, total int, query string) (*Bundle, error) {
	now := time.Now().UTC()
	entries := make([]BundleEntry, len(resources))
	for i, r := range resources {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode bundle entry %d: %w", i, err)
		}
		entries[i] = BundleEntry{
			FullURL:  fullURL(r),
			Resource: raw,
			Search:   &BundleSearch{Mode: "match"},
		}
	}
	b := &Bundle{
		ResourceType: "Bundle",
		Type:         "searchset",
		Total:        &total,
		Entry:        entries,
		Timestamp:    &now,
	}
	if query != "" {
		b.Link = []BundleLink{{Relation: "self", URL: query}}
	}
	return b, nil
}

func fullURL(r map[string]interface{}) string {
	rt, _ := r["resourceType"].(string)
	id, _ := r["id"].(string)
	if rt == "" || id == "" {
		return ""
	}
	return FormatReference(rt, id)
}

// CapabilityStatement advertises the FHIR resources this server supports.
type CapabilityStatement struct {
	ResourceType string   `json:"resourceType"`
	Status       string   `json:"status"`
	Kind         string   `json:"kind"`
	FHIRVersion  string   `json:"fhirVersion"`
	Format       []string `json:"format"`
	Rest         []CSRest `json:"rest"`
}

type CSRest struct {
	Mode     string       `json:"mode"`
	Resource []CSResource `json:"resource"`
}

type CSResource struct {
	Type        string          `json:"type"`
	Interaction []CSInteraction `json:"interaction"`
	SearchParam []CSSearchParam `json:"searchParam,omitempty"`
}

type CSInteraction struct {
	Code string `json:"code"`
}

type CSSearchParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func NewCapabilityStatement(resources ...CSResource) *CapabilityStatement {
	return &CapabilityStatement{
		ResourceType: "CapabilityStatement",
		Status:       "active",
		Kind:         "instance",
		FHIRVersion:  "4.0.1",
		Format:       []string{"json"},
		Rest:         []CSRest{{Mode: "server", Resource: resources}},
	}
}

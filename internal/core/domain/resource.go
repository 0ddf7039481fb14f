package domain

import (
	"net/url"
	"strings"
)

// ResourceKey identifies a Cache Store slot.
type ResourceKey string

// Resource is one backend-exposed collection.
type Resource struct {
	// Name is the short resource name, e.g. "propiedades".
	Name string
	// Path is the collection endpoint, kept with the backend's trailing-slash convention.
	Path string
	// PrimaryKey is the field holding each record's id.
	PrimaryKey string
}

// CacheKey returns the slot key for the unfiltered full collection.
func (r Resource) CacheKey() ResourceKey {
	return ResourceKey(r.Name + "-full-unfiltered")
}

// ItemPath returns the endpoint for a single record.
func (r Resource) ItemPath(id string) string {
	return strings.TrimSuffix(r.Path, "/") + "/" + url.PathEscape(id)
}

// UploadPath returns the multipart upload endpoint of the collection.
func (r Resource) UploadPath() string {
	return strings.TrimSuffix(r.Path, "/") + "/upload"
}

// Package bcd fetches the browser-compat-data dataset and flattens its
// nested browser/release structure into the uniform release list the
// reconciler consumes.
package bcd

// StatusRetired marks a release that has been withdrawn from the
// dataset and must not have a corresponding store record.
const StatusRetired = "retired"

// Browser is one entry of the dataset's browser map.
type Browser struct {
	Name     string                 `json:"name"`
	Releases map[string]ReleaseInfo `json:"releases"`
}

// ReleaseInfo is the per-version payload inside a browser entry. The
// dataset carries more fields (engine, dates); only status matters here.
type ReleaseInfo struct {
	Status string `json:"status"`
}

// Dataset maps browser identifiers to their release data.
type Dataset map[string]Browser

// Release is a flattened, validated browser release. Identity is the
// (BrowserID, Version) pair; it is recomputed fresh on every run and
// never persisted.
type Release struct {
	BrowserID string `json:"browserid"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Version   string `json:"version"`
}

// Retired reports whether the release has been withdrawn from the dataset.
func (r Release) Retired() bool {
	return r.Status == StatusRetired
}

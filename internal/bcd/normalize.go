package bcd

import (
	"sort"
	"strings"
	"unicode"

	"github.com/relsync/relsync/pkg/logging"
)

// Flatten converts the nested browser map into a flat release list.
// A release missing its browser name, missing its status, or carrying
// a version with no digit is skipped with a diagnostic; siblings keep
// processing. Output is sorted by (browser, version) so runs are
// deterministic.
func Flatten(browsers Dataset) []Release {
	ids := make([]string, 0, len(browsers))
	for id := range browsers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var releases []Release
	for _, id := range ids {
		browser := browsers[id]

		versions := make([]string, 0, len(browser.Releases))
		for version := range browser.Releases {
			versions = append(versions, version)
		}
		sort.Strings(versions)

		for _, version := range versions {
			info := browser.Releases[version]
			if !valid(id, browser, version, info) {
				continue
			}
			releases = append(releases, Release{
				BrowserID: id,
				Name:      browser.Name,
				Status:    info.Status,
				Version:   version,
			})
		}
	}
	return releases
}

// valid checks a single release and logs a diagnostic naming the
// browser and the offending field when it fails.
func valid(id string, browser Browser, version string, info ReleaseInfo) bool {
	switch {
	case browser.Name == "":
		logging.Warn().
			Str("browser", id).
			Str("version", version).
			Msg("Skipping release: browser has no name")
		return false
	case info.Status == "":
		logging.Warn().
			Str("browser", id).
			Str("version", version).
			Msg("Skipping release: release has no status")
		return false
	case !containsDigit(version):
		logging.Warn().
			Str("browser", id).
			Str("version", version).
			Msg("Skipping release: version has no digit")
		return false
	}
	return true
}

func containsDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

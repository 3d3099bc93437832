// Package matcher recognizes the intermediate files a Cromwell execution
// leaves under <workflow-uuid>/call-<name>/shard-<n>/.
package matcher

import (
	"regexp"

	"github.com/andresuchdata/cromwell-cleaner/internal/storage"
)

// The shape may appear anywhere in the key; whatever the user put in front
// of the workflow UUID is ignored.
var artifactPattern = regexp.MustCompile(
	`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}` +
		`/call-[\w\-]+` +
		`/shard-\d{1,5}` +
		`/(?:script|rc|gcs_delocalization\.sh|gcs_localization\.sh|gcs_transfer\.sh|stdout|stderr|pipelines-logs/action/\d+/(?:stderr|stdout))`,
)

// Match reports whether key looks like a Cromwell intermediate artifact.
func Match(key string) bool {
	return artifactPattern.MatchString(key)
}

// Filter returns the objects whose names match, in their original order.
func Filter(objs []storage.ObjectRef) []storage.ObjectRef {
	var matched []storage.ObjectRef
	for _, obj := range objs {
		if Match(obj.Name) {
			matched = append(matched, obj)
		}
	}
	return matched
}

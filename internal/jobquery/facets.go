package jobquery

import (
	"sort"
	"strings"

	"jobportal/internal/models"
)

// Facets are the filter choices offered next to the job list
type Facets struct {
	Companies []string         `json:"companies"`
	Locations []string         `json:"locations"`
	Tags      []string         `json:"tags"`
	JobTypes  []models.JobType `json:"job_types"`
}

// ParseTags splits each comma-separated tag string, trims the fragments,
// skips blanks and keeps the first occurrence of each tag. Duplicates are
// detected case-sensitively. The result is sorted case-insensitively, with
// byte order breaking ties.
func ParseTags(tagStrings []string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)

	for _, s := range tagStrings {
		for _, fragment := range strings.Split(s, ",") {
			tag := strings.TrimSpace(fragment)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		li, lj := strings.ToLower(tags[i]), strings.ToLower(tags[j])
		if li != lj {
			return li < lj
		}
		return tags[i] < tags[j]
	})

	return tags
}

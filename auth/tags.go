package auth

import (
	"sort"
	"strconv"
	"strings"
)

// ContactTags maps a tag to its numeric weight. Most tags have weight zero;
// voting tags carry the vote value ("heavy#1.5").
type ContactTags map[string]float64

// ParseContactTags parses a space-separated tag list. Weights are separated
// by "#". Malformed weights count as zero, empty entries are skipped.
func ParseContactTags(s string) ContactTags {
	var tags = ContactTags{}
	for _, entry := range strings.Fields(s) {
		var tag, weight = entry, 0.0
		if i := strings.IndexByte(entry, '#'); i >= 0 {
			tag = entry[:i]
			weight, _ = strconv.ParseFloat(entry[i+1:], 64)
		}
		if tag != "" {
			tags[strings.ToLower(tag)] = weight
		}
	}
	return tags
}

func (t ContactTags) Has(tag string) bool {
	_, ok := t[strings.ToLower(tag)]
	return ok
}

func (t ContactTags) Value(tag string) (float64, bool) {
	weight, ok := t[strings.ToLower(tag)]
	return weight, ok
}

// String formats the tags the way ParseContactTags reads them, sorted.
func (t ContactTags) String() string {
	var entries = make([]string, 0, len(t))
	for tag, weight := range t {
		if weight != 0 {
			entries = append(entries, tag+"#"+strconv.FormatFloat(weight, 'f', -1, 64))
		} else {
			entries = append(entries, tag)
		}
	}
	sort.Strings(entries)
	return strings.Join(entries, " ")
}

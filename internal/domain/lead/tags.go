package lead

import (
	"strings"

	"realtorcrm/internal/pkg/tagcodec"
)

// NormalizeTags trims every tag and drops the empty ones. Nothing left
// means no tags at all, so the result is nil.
func NormalizeTags(tags []string) []string {
	return tagcodec.Normalize(tags)
}

// SplitTags turns "a, b,,c" into [a b c].
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

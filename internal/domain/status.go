package domain

import "strings"

// Status is the draft state tracked for documents of drafts-enabled types.
type Status string

const (
	// StatusDraft marks unpublished changes.
	StatusDraft Status = "draft"
	// StatusPublished marks the version served to non-draft reads.
	StatusPublished Status = "published"
)

// ParseStatus maps free-form input onto a known status. Unknown values
// return false.
func ParseStatus(input string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(input))) {
	case StatusDraft:
		return StatusDraft, true
	case StatusPublished:
		return StatusPublished, true
	default:
		return "", false
	}
}

// StatusFor returns the status implied by a draft flag.
func StatusFor(draft bool) Status {
	if draft {
		return StatusDraft
	}
	return StatusPublished
}

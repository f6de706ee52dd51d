package pipeline

import "github.com/promptdex/promptdex/artifact"

// Decision is the admission outcome for one merged entry.
type Decision int

const (
	// Rejected drops the entry outright: its fingerprint is blacklisted.
	Rejected Decision = iota
	// AlreadyVerified accepts the entry without re-moderation: it was
	// compliant in a prior run with the same fingerprint.
	AlreadyVerified
	// NeedsModeration requires a compliance verdict before acceptance.
	NeedsModeration
)

func (d Decision) String() string {
	switch d {
	case Rejected:
		return "rejected"
	case AlreadyVerified:
		return "already_verified"
	default:
		return "needs_moderation"
	}
}

// Gate decides admission for a fingerprint. The blacklist check strictly
// precedes the already-seen check: an operator can retroactively ban
// content by fingerprint even though it would otherwise short-circuit past
// moderation via the prior-output set.
func Gate(fp string, blacklist, existing artifact.Set) Decision {
	if blacklist.Has(fp) {
		return Rejected
	}
	if existing.Has(fp) {
		return AlreadyVerified
	}
	return NeedsModeration
}

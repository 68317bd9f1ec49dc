package hosting

import "sort"

// SelectChangeRequest picks the canonical change request among candidates.
// Merged candidates with a known merge time win, earliest merge first; the
// earliest-merged tie-break is deliberate, since the first merge is the one
// that landed the commit. With no merged candidate the provider-returned
// order decides. An empty candidate list yields nil.
func SelectChangeRequest(candidates []ChangeRequest) *ChangeRequest {
	if len(candidates) == 0 {
		return nil
	}

	merged := make([]ChangeRequest, 0, len(candidates))
	for _, c := range candidates {
		if c.State == StateMerged && c.MergedAt != nil {
			merged = append(merged, c)
		}
	}

	if len(merged) > 0 {
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].MergedAt.Before(*merged[j].MergedAt)
		})
		cr := merged[0]
		return &cr
	}

	cr := candidates[0]
	return &cr
}

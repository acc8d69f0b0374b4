package state

import (
	"sort"
	"time"
)

// Build assembles a full-state document from the owner summary and the active
// people of a solar system. Callers must pass only active people; the builder
// has no access to the store and cannot filter removed rows itself.
//
// Distances are recomputed from positions, never taken from the input. People
// with no tag are counted in the total but omitted from the tag distribution.
func Build(user User, people []Person, capturedAt time.Time) Document {
	out := make([]Person, len(people))
	copy(out, people)

	summary := make(map[string]int)
	for i := range out {
		out[i].DistanceFromCenter = Distance(out[i].XPosition, out[i].YPosition)
		out[i].IsActive = true
		out[i].Alpha = nil
		if out[i].Tag != nil {
			summary[out[i].Tag.Name]++
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})

	return Document{
		User:              user,
		People:            out,
		TagsSummary:       summary,
		TotalActivePeople: len(out),
		SnapshotTimestamp: capturedAt.UTC(),
	}
}

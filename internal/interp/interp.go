package interp

import (
	"sort"

	"orrery/internal/state"
)

// Lerp linearly interpolates between start and end. t ranges from 0.0 to 1.0.
func Lerp(start, end, t float64) float64 {
	return start + (end-start)*t
}

// EaseInOut applies smoothstep (Hermite) easing so linear time input
// produces accelerate-decelerate motion.
func EaseInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Interpolate produces the intermediate document between a and b at time
// t in [0,1]. People present in both documents move along an eased linear
// path; people only in a fade out; people only in b fade in. Categorical
// fields are never blended: shared people take b's fields wholesale.
// All non-entity fields mirror b.
func Interpolate(a, b state.Document, t float64) state.Document {
	eased := EaseInOut(clamp01(t))

	peopleA := indexByID(a.People)
	peopleB := indexByID(b.People)

	ids := make([]string, 0, len(peopleA)+len(peopleB))
	seen := make(map[string]struct{}, len(peopleA)+len(peopleB))
	for _, p := range a.People {
		if _, ok := seen[p.ID]; !ok {
			seen[p.ID] = struct{}{}
			ids = append(ids, p.ID)
		}
	}
	for _, p := range b.People {
		if _, ok := seen[p.ID]; !ok {
			seen[p.ID] = struct{}{}
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)

	people := make([]state.Person, 0, len(ids))
	for _, id := range ids {
		pa, inA := peopleA[id]
		pb, inB := peopleB[id]
		switch {
		case inA && inB:
			person := pb
			person.XPosition = Lerp(pa.XPosition, pb.XPosition, eased)
			person.YPosition = Lerp(pa.YPosition, pb.YPosition, eased)
			person.DistanceFromCenter = state.Distance(person.XPosition, person.YPosition)
			person.Alpha = alpha(1.0)
			people = append(people, person)
		case inA:
			person := pa
			person.Alpha = alpha(1.0 - eased)
			people = append(people, person)
		default:
			person := pb
			person.Alpha = alpha(eased)
			people = append(people, person)
		}
	}

	out := b
	out.People = people
	return out
}

func indexByID(people []state.Person) map[string]state.Person {
	index := make(map[string]state.Person, len(people))
	for _, p := range people {
		index[p.ID] = p
	}
	return index
}

func alpha(v float64) *float64 {
	return &v
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}

package solar

import (
	"context"
	"math"
	"time"

	"orrery/internal/services"
	"orrery/internal/state"
	"orrery/internal/store"
)

// PersonDistance names a person together with its distance from center.
type PersonDistance struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// Stats is the analytics summary for one solar system.
type Stats struct {
	TotalPeople       int                    `json:"total_people"`
	AverageDistance   float64                `json:"average_distance"`
	ClosestPerson     *PersonDistance        `json:"closest_person"`
	FurthestPerson    *PersonDistance        `json:"furthest_person"`
	TagDistribution   map[string]int         `json:"tag_distribution"`
	ScoreDistribution map[string]int         `json:"relationship_score_distribution"`
	TotalSnapshots    int                    `json:"total_snapshots"`
	TimelineActivity  []store.ActivityBucket `json:"timeline_activity"`
}

// Stats computes analytics over the active people and the last 30 days of
// snapshot activity.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	system, err := s.System(ctx, userID)
	if err != nil {
		return nil, err
	}

	people, err := s.store.ListActivePeople(ctx, system.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "stats", "", err)
	}
	tags, err := s.store.ListTags(ctx, system.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "stats", "", err)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	activity, err := s.store.SnapshotActivity(ctx, system.ID, cutoff)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "stats", "", err)
	}
	snapshots, err := s.store.CountSnapshots(ctx, system.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "solar", "stats", "", err)
	}

	stats := &Stats{
		TagDistribution:   map[string]int{},
		ScoreDistribution: emptyScoreDistribution(),
		TotalSnapshots:    snapshots,
		TimelineActivity:  activity,
	}
	if len(people) == 0 {
		return stats, nil
	}

	tagNames := make(map[string]string, len(tags))
	for _, tag := range tags {
		tagNames[tag.ID] = tag.Name
	}

	var sum float64
	closest, furthest := people[0], people[0]
	for _, person := range people {
		sum += person.DistanceFromCenter
		if person.DistanceFromCenter < closest.DistanceFromCenter {
			closest = person
		}
		if person.DistanceFromCenter > furthest.DistanceFromCenter {
			furthest = person
		}

		tagName := state.Untagged
		if person.TagID != "" {
			if name, ok := tagNames[person.TagID]; ok {
				tagName = name
			}
		}
		stats.TagDistribution[tagName]++

		stats.ScoreDistribution[scoreBucket(person.RelationshipScore)]++
	}

	stats.TotalPeople = len(people)
	stats.AverageDistance = round4(sum / float64(len(people)))
	stats.ClosestPerson = &PersonDistance{Name: closest.Name, Distance: round4(closest.DistanceFromCenter)}
	stats.FurthestPerson = &PersonDistance{Name: furthest.Name, Distance: round4(furthest.DistanceFromCenter)}
	return stats, nil
}

func emptyScoreDistribution() map[string]int {
	return map[string]int{
		"0-25":     0,
		"26-50":    0,
		"51-75":    0,
		"76-100":   0,
		"unscored": 0,
	}
}

func scoreBucket(score *int) string {
	switch {
	case score == nil:
		return "unscored"
	case *score <= 25:
		return "0-25"
	case *score <= 50:
		return "26-50"
	case *score <= 75:
		return "51-75"
	default:
		return "76-100"
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

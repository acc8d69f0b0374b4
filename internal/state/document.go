package state

import (
	"math"
	"time"
)

// Untagged is the summary bucket label for people with no tag.
const Untagged = "Untagged"

// User is the owner summary embedded in every document.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Tag carries the denormalized tag fields resolved at capture time.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

// Person is one positioned entity inside a document. Alpha is only ever set
// on interpolated documents produced for transition frames; it is never
// persisted with a snapshot.
type Person struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	XPosition          float64  `json:"x_position"`
	YPosition          float64  `json:"y_position"`
	DistanceFromCenter float64  `json:"distance_from_center"`
	Tag                *Tag     `json:"tag"`
	AvatarURL          string   `json:"avatar_url,omitempty"`
	IsActive           bool     `json:"is_active"`
	Alpha              *float64 `json:"alpha,omitempty"`

	OrbitSpeed        float64 `json:"orbit_speed,omitempty"`
	PlanetSize        float64 `json:"planet_size,omitempty"`
	CustomColor       string  `json:"custom_color,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	RelationshipScore *int    `json:"relationship_score,omitempty"`
}

// Document is the self-contained full-state payload stored inside a snapshot
// and consumed by the interpolator and frame renderer.
type Document struct {
	User              User           `json:"user"`
	People            []Person       `json:"people"`
	TagsSummary       map[string]int `json:"tags_summary"`
	TotalActivePeople int            `json:"total_active_people"`
	SnapshotTimestamp time.Time      `json:"snapshot_timestamp"`
}

// Distance returns the Euclidean norm of a normalized position.
func Distance(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}

// Opacity returns the effective alpha for rendering. Persisted documents
// carry no alpha and render fully opaque.
func (p Person) Opacity() float64 {
	if p.Alpha == nil {
		return 1.0
	}
	return *p.Alpha
}

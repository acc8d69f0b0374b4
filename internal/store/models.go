package store

import "time"

// ChangeType classifies the mutation a snapshot records.
type ChangeType string

const (
	ChangeSystemCreated    ChangeType = "system_created"
	ChangePersonAdded      ChangeType = "person_added"
	ChangePersonRemoved    ChangeType = "person_removed"
	ChangePersonMoved      ChangeType = "person_moved"
	ChangePersonTagChanged ChangeType = "person_tag_changed"
	ChangeBulkUpdate       ChangeType = "bulk_update"
)

var changeTypes = map[ChangeType]struct{}{
	ChangeSystemCreated:    {},
	ChangePersonAdded:      {},
	ChangePersonRemoved:    {},
	ChangePersonMoved:      {},
	ChangePersonTagChanged: {},
	ChangeBulkUpdate:       {},
}

// Valid reports whether c is a known change type.
func (c ChangeType) Valid() bool {
	_, ok := changeTypes[c]
	return ok
}

// User is an account row.
type User struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
	CreatedAt time.Time
}

// SolarSystem is the single live-state container belonging to one user.
type SolarSystem struct {
	ID        string
	UserID    string
	ThemeJSON string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tag is a person category. Predefined tags have no owning system and are
// shared across all users.
type Tag struct {
	ID            string
	SolarSystemID string
	Name          string
	Color         string
	Icon          string
	IsPredefined  bool
}

// Person is a positioned entity. RemovedAt is non-zero once soft-deleted.
type Person struct {
	ID                 string
	SolarSystemID      string
	Name               string
	AvatarURL          string
	XPosition          float64
	YPosition          float64
	DistanceFromCenter float64
	TagID              string
	OrbitSpeed         float64
	PlanetSize         float64
	CustomColor        string
	Notes              string
	RelationshipScore  *int
	AddedAt            time.Time
	RemovedAt          *time.Time
}

// Active reports whether the person has not been soft-deleted.
func (p Person) Active() bool {
	return p.RemovedAt == nil
}

// Snapshot is an immutable full-state record. FullState holds the document
// JSON exactly as captured.
type Snapshot struct {
	Seq           int64
	ID            string
	SolarSystemID string
	FullState     []byte
	ChangeType    ChangeType
	ChangeSummary string
	CreatedAt     time.Time
}

// SnapshotSummary is the metadata-only view returned by paginated listings.
type SnapshotSummary struct {
	ID            string
	ChangeType    ChangeType
	ChangeSummary string
	CreatedAt     time.Time
}

// JobKind distinguishes render job flavors.
type JobKind string

const (
	JobKindVideo JobKind = "video"
	JobKindImage JobKind = "image"
)

// JobStatus is the lifecycle of a render job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRendering JobStatus = "rendering"
	JobEncoding  JobStatus = "encoding"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// RenderJob tracks one background generation run so callers can observe
// progress by polling.
type RenderJob struct {
	ID              int64
	SolarSystemID   string
	Kind            JobKind
	Status          JobStatus
	ProgressPercent float64
	ProgressMessage string
	OutputPath      string
	ErrorKind       string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ActivityBucket is one day of snapshot counts for the stats service.
type ActivityBucket struct {
	Date        string
	ChangeCount int
}

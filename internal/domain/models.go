package domain

// Identifier is the opaque unique id of a dance item.
// The zero value means "no item".
type Identifier string

// None is the absent identifier
const None Identifier = ""

// ResourceRole names one of the three independently fetched tracks of a dance
type ResourceRole string

const (
	// RoleMotion is the motion track (always present)
	RoleMotion ResourceRole = "motion"
	// RoleAudio is the audio track (always present)
	RoleAudio ResourceRole = "audio"
	// RoleCamera is the optional camera track
	RoleCamera ResourceRole = "camera"
)

// Roles lists every resource role in display order
var Roles = []ResourceRole{RoleAudio, RoleMotion, RoleCamera}

// DanceItem is one selectable performance of the collection
type DanceItem struct {
	// ID uniquely identifies the item within the collection
	ID Identifier
	// Name is the display title
	Name string
	// Author of the performance
	Author string
	// Thumb is the URL of the cover image
	Thumb string
	// MotionRef references the motion track
	MotionRef string
	// AudioRef references the audio track
	AudioRef string
	// CameraRef references the camera track, empty when the dance has none
	CameraRef string
}

// HasCamera reports whether the item carries a camera track
func (d DanceItem) HasCamera() bool {
	return d.CameraRef != ""
}

// Ref returns the resource reference for the given role
func (d DanceItem) Ref(role ResourceRole) string {
	switch role {
	case RoleMotion:
		return d.MotionRef
	case RoleAudio:
		return d.AudioRef
	case RoleCamera:
		return d.CameraRef
	default:
		return ""
	}
}

// LoadProgress is the live download state of one resource of one item
type LoadProgress struct {
	// Downloading is true while a fetch is outstanding
	Downloading bool
	// Percent is the completion in [0, 100]
	Percent float64
}

// PlaybackSnapshot is a point-in-time copy of the shared playback state
type PlaybackSnapshot struct {
	SelectedID Identifier
	PlayingID  Identifier
	// Activation increases by one each time an item is activated
	Activation uint64
}

// IntentKind is the type of a user intent
type IntentKind string

const (
	// IntentSelect focuses an item without touching playback
	IntentSelect IntentKind = "select"
	// IntentToggle flips play/pause for an item
	IntentToggle IntentKind = "toggle"
	// IntentStatus asks for a report of the shared state and load progress
	IntentStatus IntentKind = "status"
	// IntentList asks for the collection listing
	IntentList IntentKind = "list"
)

// Intent is a single user action addressed to the collection
type Intent struct {
	Kind   IntentKind
	Target Identifier
}

package models

// MediaType represents the kind of media an item is
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
	MediaTypeBook  MediaType = "book"
	MediaTypeGame  MediaType = "game"
	MediaTypeTask  MediaType = "task"
)

// MediaTypes lists every supported media type
var MediaTypes = []MediaType{MediaTypeMovie, MediaTypeTV, MediaTypeBook, MediaTypeGame, MediaTypeTask}

// Valid reports whether t is a supported media type
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeBook, MediaTypeGame, MediaTypeTask:
		return true
	}
	return false
}

// Unit returns the unit progress and lock goals are measured in for this media type
func (t MediaType) Unit() Unit {
	switch t {
	case MediaTypeBook:
		return UnitPages
	case MediaTypeTV:
		return UnitEpisodes
	case MediaTypeTask:
		return UnitUnits
	default:
		return UnitMinutes
	}
}

// IsMediaTypeName reports whether s names one of the media types
func IsMediaTypeName(s string) bool {
	return MediaType(s).Valid()
}

// Unit represents a progress unit
type Unit string

const (
	UnitMinutes  Unit = "minutes"
	UnitPages    Unit = "pages"
	UnitEpisodes Unit = "episodes"
	UnitUnits    Unit = "units"
)

// LockType represents what a lock's key parent refers to
type LockType string

const (
	LockTypeSpecific  LockType = "specific"   // key_parent_id is a media item
	LockTypeCategory  LockType = "category"   // key_parent_text is a category label
	LockTypeMediaType LockType = "media_type" // key_parent_text is a media type name
)

// Valid reports whether t is a supported lock type
func (t LockType) Valid() bool {
	switch t {
	case LockTypeSpecific, LockTypeCategory, LockTypeMediaType:
		return true
	}
	return false
}

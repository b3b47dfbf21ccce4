package domain

// Variant is one video alternative of an experiment. VideoRef and
// ThumbnailRef are storage locators, never media bytes.
type Variant struct {
	ID           string
	ExperimentID string
	Position     int // registration order, used for tie breaking
	Name         string
	VideoRef     string
	ThumbnailRef string
	Description  string
}

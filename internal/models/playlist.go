package models

// Playlist captures a user-curated list of tracks. OwnerName is a snapshot of
// the owner's name at creation time and is not kept in sync afterwards.
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	OwnerID     string  `json:"owner_id"`
	OwnerName   string  `json:"owner_name"`
	ImageURL    string  `json:"image_url,omitempty"`
	Tracks      []Track `json:"tracks"`
}

// ContainsTrack reports whether a track with the given id is already present.
func (p *Playlist) ContainsTrack(trackID string) bool {
	for _, t := range p.Tracks {
		if t.ID == trackID {
			return true
		}
	}
	return false
}

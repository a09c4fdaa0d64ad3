package models

// Tier is the subscription level attached to a user account.
type Tier string

const (
	TierStandard Tier = "STANDARD"
	TierPremium  Tier = "PREMIUM"
	TierAdmin    Tier = "ADMIN"
)

// Library holds the id sets a user has curated. Each set is deduplicated;
// membership is the only state tracked.
type Library struct {
	CreatedPlaylistIDs []string `json:"created_playlist_ids"`
	LikedTrackIDs      []string `json:"liked_track_ids"`
	LikedPlaylistIDs   []string `json:"liked_playlist_ids"`
	LikedArtistIDs     []string `json:"liked_artist_ids"`
	LikedAlbumIDs      []string `json:"liked_album_ids"`
}

// User is an account in the application. The id is the subject issued by the
// identity provider and never changes.
type User struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	FollowerCount  int     `json:"follower_count"`
	FollowingCount int     `json:"following_count"`
	PlaylistCount  int     `json:"playlist_count"`
	Tier           Tier    `json:"tier"`
	Library        Library `json:"library"`
}

// IsAdmin reports whether the user holds the ADMIN tier.
func (u *User) IsAdmin() bool {
	return u.Tier == TierAdmin
}

// CanUsePremiumFeatures reports whether the user may call tier-gated
// endpoints such as playlist creation and mixing.
func (u *User) CanUsePremiumFeatures() bool {
	return u.Tier == TierPremium || u.Tier == TierAdmin
}

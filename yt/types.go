package yt

// Track is one piece of media as returned by search or resolve. Two tracks
// are the same media when their IDs match.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
	Channel   string `json:"channel,omitempty"`
	Views     int64  `json:"views,omitempty"`
}

// Same reports whether t and o describe the same media item
func (t Track) Same(o Track) bool {
	return t.ID == o.ID
}

// Format is a downloadable stream of a video
type Format struct {
	Itag     int    `json:"itag"`
	Note     string `json:"format_note"`
	Ext      string `json:"ext"`
	Filesize int64  `json:"filesize"`
}

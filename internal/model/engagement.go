package model

// EngagementCounters holds the like/share/view counters for one entity as
// reported by the engagement service. ViewerLiked is scoped to the viewer
// the counters were fetched for.
type EngagementCounters struct {
    Likes       int64 `json:"likes"`
    Shares      int64 `json:"shares"`
    Views       int64 `json:"views"`
    ViewerLiked bool  `json:"viewer_liked"`
}

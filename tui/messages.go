package tui

import (
	"time"

	"redditinsights/types"
)

// Messages for the tea program

// DataLoadedMsg is sent when a GET /data call finishes
type DataLoadedMsg struct {
	Dataset types.Dataset
	Err     error
}

// RefreshRequestedMsg is sent when the POST /refresh call finishes
type RefreshRequestedMsg struct {
	Err error
}

// RefetchDueMsg is sent once the post-refresh delay has elapsed
type RefetchDueMsg struct {
	Time time.Time
}

// LinkOpenedMsg reports the outcome of handing a permalink to the browser
type LinkOpenedMsg struct {
	URL string
	Err error
}

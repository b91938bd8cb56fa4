package ports

import (
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
)

// ChartRenderer draws Expert and Novice mean curves over Time with the
// event boundaries marked, writing the result to path.
type ChartRenderer interface {
	Render(path string, records []signal.TaggedRecord, intervals []signal.Interval) error
	Extension() string
}

package ports

import (
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"
)

// TableLoader reads a wide numeric table (one column per subject) from a
// file. Missing cells are NaN.
type TableLoader interface {
	LoadTable(path string) (*signal.Table, error)
}

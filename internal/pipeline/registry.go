package pipeline

import (
	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/masking"
	"github.com/san-kum/chaoscrypt/internal/metrics"
)

const syncResidualName = "sync_residual_rms"

// DefaultMetrics are the receiver observers attached on decrypt. The sync
// window is the last time unit of the grace phase, or all of it when shorter.
func DefaultMetrics(mc masking.Config) []dynamo.Metric {
	grace := mc.GraceSteps()
	from := grace - int(mc.Frequency)
	if from < 0 {
		from = 0
	}
	return []dynamo.Metric{
		metrics.NewSyncResidual(from, grace),
		metrics.NewExcursion(),
	}
}

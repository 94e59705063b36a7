package obs

import (
	"time"

	"go.uber.org/zap"
)

// Time logs the duration of an operation when the returned func runs,
// downgrading to debug on success. Use as:
//
//	defer obs.Time(log, "cache.GetMany")(&err)
func Time(log *zap.SugaredLogger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		if log == nil {
			return
		}
		dur := time.Since(start).Milliseconds()

		if errp != nil && *errp != nil {
			log.Warnw("operation failed", "op", name, "dur_ms", dur, "err", *errp)
			return
		}
		log.Debugw("operation done", "op", name, "dur_ms", dur)
	}
}

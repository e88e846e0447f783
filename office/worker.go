package office

import (
	"time"

	"github.com/rs/zerolog/log"

	"search-adapters/config"
)

// StartBackgroundSync launches the periodic incremental refresh worker when
// OFFICEINDEX_BACKGROUND_SYNC_SECONDS is positive. Starting is a no-op when a
// worker is already running.
func (ix *Index) StartBackgroundSync() {
	intervalSeconds := config.BackgroundSyncSeconds()
	if intervalSeconds <= 0 {
		return
	}

	ix.workerMu.Lock()
	defer ix.workerMu.Unlock()
	if ix.workerActive {
		return
	}

	ix.workerStop = make(chan struct{})
	ix.workerActive = true
	go ix.backgroundLoop(time.Duration(intervalSeconds)*time.Second, ix.workerStop)

	log.Info().Int("intervalSeconds", intervalSeconds).Msg("officeindex background sync enabled")
}

// StopBackgroundSync cancels the worker's interval sleep and stops it.
func (ix *Index) StopBackgroundSync() {
	ix.workerMu.Lock()
	defer ix.workerMu.Unlock()
	if !ix.workerActive {
		return
	}
	close(ix.workerStop)
	ix.workerActive = false
}

// BackgroundSyncActive reports whether the worker is running.
func (ix *Index) BackgroundSyncActive() bool {
	ix.workerMu.Lock()
	defer ix.workerMu.Unlock()
	return ix.workerActive
}

func (ix *Index) backgroundLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			summary, err := ix.Refresh(ModeIncremental, true)
			if err != nil {
				log.Error().Err(err).Msg("officeindex background refresh failed")
				continue
			}
			if summary.Status == "ok" {
				log.Info().
					Int("indexed", summary.IndexedFiles).
					Int("updated", summary.UpdatedFiles).
					Int("failed", summary.FailedFiles).
					Msg("officeindex background refresh complete")
			}
		}
	}
}

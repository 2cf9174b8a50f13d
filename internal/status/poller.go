package status

import (
	"go.uber.org/zap"
)

// Poller remembers the last observed snapshot and reports only changes.
type Poller struct {
	provider Provider
	log      *zap.Logger

	last     Snapshot
	lastWarn string
}

// NewPoller starts from an absent source, so a missing file at startup
// produces no change.
func NewPoller(provider Provider, log *zap.Logger) *Poller {
	return &Poller{
		provider: provider,
		log:      log.With(zap.String("component", "status-poller")),
	}
}

// Poll takes one snapshot. It returns the new status and true only when the
// content differs from the previous poll and decodes cleanly. Malformed
// content is logged once per revision, an unreadable source once per distinct
// error. Neither stops the loop.
func (p *Poller) Poll() (ExternalStatus, bool) {
	snap, err := p.provider.Snapshot()
	if err != nil && !snap.Present {
		p.warn("status source unreadable", err)
		return ExternalStatus{}, false
	}

	if snap.Same(p.last) {
		return ExternalStatus{}, false
	}
	p.last = snap
	p.lastWarn = ""

	if err != nil {
		p.log.Warn("status source malformed, keeping current visuals",
			zap.Uint64("revision", snap.Revision),
			zap.Error(err),
		)
		return ExternalStatus{}, false
	}

	if !snap.Present {
		p.log.Info("status source removed")
		return ExternalStatus{}, false
	}

	p.log.Debug("status changed",
		zap.Uint64("revision", snap.Revision),
		zap.Bool("processing", snap.Status.Processing),
		zap.Bool("waiting", snap.Status.Waiting),
	)
	return snap.Status, true
}

// Revision returns the fingerprint of the last observed content.
func (p *Poller) Revision() uint64 { return p.last.Revision }

// warn suppresses repeats of the same unreadable-source error.
func (p *Poller) warn(msg string, err error) {
	if err.Error() == p.lastWarn {
		return
	}
	p.lastWarn = err.Error()
	p.log.Warn(msg, zap.Error(err))
}

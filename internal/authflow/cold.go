package authflow

import (
	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/chunk"
	"github.com/AlexZinkM/ergo-wallet/internal/coldsign"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
	"github.com/AlexZinkM/ergo-wallet/internal/preview"
)

// AddPage feeds one scanned cold signing request page.
// added reports whether the page was new. Unreadable or inconsistent pages
// return an error and keep the session scanning. Once every page is present
// the request is decoded; a decode or preview failure moves the session to
// DONE and is returned as well.
func (m *Machine) AddPage(text string) (added bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.snap.Load()
	if current.State != StateScanning || m.collector == nil {
		return false, ErrInvalidState
	}

	c, err := chunk.ParsePage(chunk.TypeColdSigningRequest, text)
	if err != nil {
		return false, err
	}
	added, err = m.collector.Add(c)
	if err != nil || !added {
		return false, err
	}
	m.metrics.PagesScanned.Inc()

	base := Snapshot{Flow: FlowCold, State: StateScanning}
	base.PagesSeen = m.collector.Seen()
	base.PagesTotal = m.collector.Total()

	if !m.collector.Complete() {
		m.publishLocked(base)
		return true, nil
	}

	req, err := coldsign.DecodeRequest(m.collector.Chunks())
	if err != nil {
		m.log.Warn("cold signing request rejected", zap.Error(err))
		m.doneLocked(base, model.SeverityError, m.failureMessage(m.messages.FetchFailed, err))
		return true, err
	}

	var info *model.TransactionInfo
	if m.opts.Inspector != nil {
		info, err = preview.FromColdRequest(req, m.opts.Inspector)
		if err != nil {
			m.log.Warn("cold signing preview failed", zap.Error(err))
			m.doneLocked(base, model.SeverityError, m.failureMessage(m.messages.FetchFailed, err))
			return true, err
		}
	}

	base.State = StateWaitForConfirmation
	base.ColdRequest = req
	base.Severity = model.SeverityNone
	if info != nil {
		base.Transaction = info
		base.Preview = preview.Reduce(info)
		m.log.Info("cold signing preview", zap.Strings("lines", preview.Lines(base.Preview)))
	}
	m.publishLocked(base)
	return true, nil
}

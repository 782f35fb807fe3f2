package services

import (
	"context"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/metrics"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

// Tracker sends page views and link clicks for one browser scope.
// Every send is a single best-effort attempt; failures are logged and
// dropped.
type Tracker struct {
	sink     ports.EventSink
	sessions *SessionManager
	browsing ports.BrowsingContext
}

func NewTracker(sink ports.EventSink, sessions *SessionManager, browsing ports.BrowsingContext) *Tracker {
	return &Tracker{sink: sink, sessions: sessions, browsing: browsing}
}

// TrackPageView records a view of path. The returned channel is closed once
// the send attempt finished; waiting on it is optional.
func (t *Tracker) TrackPageView(ctx context.Context, path string, projectID *int64) <-chan struct{} {
	referrer := ""
	if t.browsing != nil {
		referrer = t.browsing.Referrer()
	}
	event := domain.NewPageView(t.sessions.GetOrCreateSessionID(), path, referrer, projectID)
	return t.dispatch(ctx, event)
}

// TrackLinkClick records a click on a link of the given type.
func (t *Tracker) TrackLinkClick(ctx context.Context, linkType domain.LinkType, url string, projectID *int64) <-chan struct{} {
	event := domain.NewClick(t.sessions.GetOrCreateSessionID(), linkType, url, projectID)
	return t.dispatch(ctx, event)
}

func (t *Tracker) dispatch(ctx context.Context, event domain.AnalyticsEvent) <-chan struct{} {
	done := make(chan struct{})
	// The caller's request may finish before the send does.
	sendCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(done)
		err := t.sink.Send(sendCtx, event)
		metrics.RecordDispatch(string(event.Type), err)
		if err != nil {
			derr := &domain.DispatchError{Kind: event.Type, Err: err}
			logging.Warn().Err(derr).
				Str("session_id", event.Data.SessionID).
				Msg("analytics event dropped")
			return
		}
		logging.Debug().Str("type", string(event.Type)).Msg("analytics event sent")
	}()

	return done
}

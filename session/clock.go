package session

import "liveshop/entities"

// DeriveSessionState derives the buyer-visible session phase from a fresh
// Show read. Pure function, safe to call from any goroutine; it must be
// re-evaluated on every poll rather than cached.
//
// Rules, in priority order:
//  1. ended/cancelled shows expose nothing, permanently
//  2. scheduled shows with no stream are preview-only
//  3. a live stream permits both browsing and buying
//  4. a starting stream permits browsing only
func DeriveSessionState(show entities.Show) entities.SessionState {
	if show.LifecycleStatus.IsTerminal() {
		return entities.SessionState{}
	}

	if show.LifecycleStatus == entities.ShowScheduled && show.StreamPhase == entities.StreamNone {
		return entities.SessionState{}
	}

	switch show.StreamPhase {
	case entities.StreamLive:
		return entities.SessionState{
			CanShowProducts: true,
			CanBuy:          true,
			IsLive:          true,
		}
	case entities.StreamStarting:
		return entities.SessionState{
			CanShowProducts: true,
		}
	}

	return entities.SessionState{}
}

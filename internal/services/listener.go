package services

import "context"

// BroadcastListener forwards restaurant changes to live clients.
type BroadcastListener struct {
	broadcaster Broadcaster
}

// NewBroadcastListener creates a listener that publishes restaurants_changed.
func NewBroadcastListener(b Broadcaster) *BroadcastListener {
	return &BroadcastListener{broadcaster: b}
}

// RestaurantsChanged implements ChangeListener.
func (l *BroadcastListener) RestaurantsChanged(_ context.Context, change RestaurantChange) {
	l.broadcaster.BroadcastMessage("restaurants_changed", change)
}

package handlers

import (
	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/feed"
)

// Feeds exposes the app's change feeds and notification hub to tests
func (a *App) Feeds() (cases, notifications *feed.Feed, hub *NotificationHub) {
	return a.caseChanges, a.notificationChanges, a.hub
}

// UserStore exposes the app's user store to tests
func (a *App) UserStore() databases.UserDatabase {
	return a.users
}

// Package dummydb provides in-memory repository implementations for tests.
package dummydb

import (
	"sync"

	"github.com/tradelore/tradelore/core/activity"
	"github.com/tradelore/tradelore/core/audit"
	"github.com/tradelore/tradelore/core/notification"
	"github.com/tradelore/tradelore/core/resource"
	"github.com/tradelore/tradelore/core/user"
)

type (
	DB struct {
		user         *userTable
		resource     *resourceTable
		audit        *auditTable
		notification *notificationTable
		activity     *activityTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	resourceTable struct {
		sync.RWMutex
		table    map[string]*resource.Resource
		versions []resource.Version
	}

	auditTable struct {
		sync.RWMutex
		entries []audit.Entry
	}

	notificationTable struct {
		sync.RWMutex
		table []notification.Notification
	}

	activityTable struct {
		sync.RWMutex
		bookmarks []activity.Bookmark
		comments  []activity.Comment
		downloads []activity.Download
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		resource:     &resourceTable{table: make(map[string]*resource.Resource)},
		audit:        &auditTable{},
		notification: &notificationTable{},
		activity:     &activityTable{},
	}
	return db, nil
}

package app

import (
	"context"
	"sort"
)

// Store persists App records.
//
// List and First honour Spec; results are ordered by Order then ID. First
// returns nil, nil when nothing matches. Add assigns the ID. A client id held by
// another active app is rejected with errors.ErrCodeAlreadyExists.
type Store interface {
	List(ctx context.Context, spec Spec) ([]App, error)
	First(ctx context.Context, spec Spec) (*App, error)
	Add(ctx context.Context, app *App) error
	Update(ctx context.Context, app *App) error
	UpdateRange(ctx context.Context, apps []*App) error
}

func sortApps(apps []App) {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].Order != apps[j].Order {
			return apps[i].Order < apps[j].Order
		}
		return apps[i].ID < apps[j].ID
	})
}

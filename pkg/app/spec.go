package app

// Spec filters App queries. Removed apps are excluded unless IncludeRemoved is set.
// A non-nil IDs slice restricts results to those ids, so an empty one matches nothing.
type Spec struct {
	IDs            []int
	ClientID       string
	Type           Type
	IncludeRemoved bool
}

// All matches every active app.
func All() Spec {
	return Spec{}
}

// ByID matches one active app.
func ByID(id int) Spec {
	return Spec{IDs: []int{id}}
}

// ByIDs matches active apps with the given ids.
func ByIDs(ids []int) Spec {
	if ids == nil {
		ids = []int{}
	}
	return Spec{IDs: ids}
}

// ByClientID matches the active app holding clientID.
func ByClientID(clientID string) Spec {
	return Spec{ClientID: clientID}
}

// ByType matches active apps of one type.
func ByType(t Type) Spec {
	return Spec{Type: t}
}

// Matches evaluates the spec against a single app.
func (s Spec) Matches(a *App) bool {
	if !s.IncludeRemoved && a.Removed {
		return false
	}
	if s.IDs != nil {
		found := false
		for _, id := range s.IDs {
			if id == a.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.ClientID != "" && a.ClientID != s.ClientID {
		return false
	}
	if s.Type != "" && a.Type != s.Type {
		return false
	}
	return true
}

// matchesNothing short-circuits an explicit empty id list.
func (s Spec) matchesNothing() bool {
	return s.IDs != nil && len(s.IDs) == 0
}

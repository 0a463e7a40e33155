// Package scope resolves an actor into the authorization scope every ledger
// operation executes under. Operations take a Scope, never a raw actor, so a
// caller cannot skip the check.
package scope

import "homeledger-server/src/models"

// Scope is either Self (actor sees only their own records) or Global
// (administrator override). The actor id is carried in both cases: even a
// Global caller creates records under their own id.
type Scope struct {
	actorID int64
	global  bool
}

func Self(actorID int64) Scope {
	return Scope{actorID: actorID}
}

func Global(actorID int64) Scope {
	return Scope{actorID: actorID, global: true}
}

// Resolve maps an actor to its scope: ADMIN resolves to Global, everyone
// else to Self.
func Resolve(actor *models.Actor) Scope {
	return ForRole(actor.ID, actor.Role)
}

// ForRole is Resolve for callers that carry the role as a bare string, such
// as token claims.
func ForRole(actorID int64, role string) Scope {
	if role == models.RoleAdmin {
		return Global(actorID)
	}
	return Self(actorID)
}

func (s Scope) IsGlobal() bool { return s.global }

func (s Scope) ActorID() int64 { return s.actorID }

// CanAccess reports whether a record owned by ownerID is visible under s.
func (s Scope) CanAccess(ownerID int64) bool {
	return s.global || s.actorID == ownerID
}

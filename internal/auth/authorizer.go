// Package auth holds the authorization collaborator consulted by the API
// boundary. The consistency engine itself assumes callers are authorized;
// identity management lives outside this service.
package auth

import "context"

// Actor identifies a caller for authorization purposes.
type Actor struct {
	Token string
}

// Authorizer answers access questions for a hunt.
type Authorizer interface {
	HasAccess(ctx context.Context, actor Actor, huntID string) bool
	HasAdmin(ctx context.Context, actor Actor, huntID string) bool
}

// StaticAuthorizer grants access by comparing against fixed tokens from
// configuration. The admin token implies member access. Empty configured
// tokens grant the corresponding level to everyone, which keeps local
// development friction-free.
type StaticAuthorizer struct {
	memberToken string
	adminToken  string
}

// NewStaticAuthorizer creates an authorizer with fixed tokens.
func NewStaticAuthorizer(memberToken, adminToken string) *StaticAuthorizer {
	return &StaticAuthorizer{memberToken: memberToken, adminToken: adminToken}
}

// HasAccess reports whether the actor may read and mutate hunt data.
func (a *StaticAuthorizer) HasAccess(ctx context.Context, actor Actor, huntID string) bool {
	if a.memberToken == "" {
		return true
	}
	return actor.Token == a.memberToken || a.HasAdmin(ctx, actor, huntID)
}

// HasAdmin reports whether the actor may perform admin operations.
func (a *StaticAuthorizer) HasAdmin(_ context.Context, actor Actor, _ string) bool {
	if a.adminToken == "" {
		return true
	}
	return actor.Token == a.adminToken
}

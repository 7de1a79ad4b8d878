package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/auth"
	domainerrors "github.com/cardinalitypuzzles/cardboard-server/internal/errors"
)

// actorFromHeader validates the Authorization header and returns the actor.
func actorFromHeader(authHeader string) (auth.Actor, error) {
	if authHeader == "" {
		return auth.Actor{}, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return auth.Actor{}, huma.Error401Unauthorized("Invalid authorization header format")
	}

	return auth.Actor{Token: parts[1]}, nil
}

// requireAccess authenticates the request and checks hunt membership.
func (s *Server) requireAccess(ctx context.Context, authHeader, huntID string) (auth.Actor, error) {
	actor, err := actorFromHeader(authHeader)
	if err != nil {
		return auth.Actor{}, err
	}

	if !s.authorizer.HasAccess(ctx, actor, huntID) {
		return auth.Actor{}, domainerrors.Forbidden("Hunt access required")
	}

	return actor, nil
}

// requireAdmin authenticates the request and requires hunt admin rights.
func (s *Server) requireAdmin(ctx context.Context, authHeader, huntID string) (auth.Actor, error) {
	actor, err := actorFromHeader(authHeader)
	if err != nil {
		return auth.Actor{}, err
	}

	if !s.authorizer.HasAdmin(ctx, actor, huntID) {
		return auth.Actor{}, domainerrors.Forbidden("Hunt admin access required")
	}

	return actor, nil
}

// requirePuzzleAccess loads a puzzle's hunt and checks membership on it.
func (s *Server) requirePuzzleAccess(ctx context.Context, authHeader, puzzleID string) (auth.Actor, error) {
	huntID, err := s.services.Puzzle.HuntIDForPuzzle(ctx, puzzleID)
	if err != nil {
		return auth.Actor{}, err
	}

	return s.requireAccess(ctx, authHeader, huntID)
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// Owner tokens have the form <owner_id>.<secret>. Only a bcrypt hash of the
// secret is stored.

var errUnauthorized = errors.New("missing or invalid owner token")

// OwnerStore creates and looks up owners.
type OwnerStore interface {
	CreateOwner(ctx context.Context, name, tokenHash string) (*world.Owner, error)
	Owner(ctx context.Context, id int64) (*world.Owner, error)
}

// IssueOwner creates an owner and returns it with its token. The token cannot
// be recovered later. A cost of 0 uses bcrypt.DefaultCost.
func IssueOwner(ctx context.Context, store OwnerStore, name string, cost int) (*world.Owner, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", world.Invalidf("owner name is required")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	secret := strings.ReplaceAll(uuid.NewString(), "-", "")
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing owner token: %w", err)
	}
	owner, err := store.CreateOwner(ctx, name, string(hash))
	if err != nil {
		return nil, "", err
	}
	return owner, fmt.Sprintf("%d.%s", owner.ID, secret), nil
}

// authenticate resolves a token to its owner.
func authenticate(ctx context.Context, store OwnerStore, token string) (*world.Owner, error) {
	idPart, secret, ok := strings.Cut(token, ".")
	if !ok || secret == "" {
		return nil, errUnauthorized
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return nil, errUnauthorized
	}

	owner, err := store.Owner(ctx, id)
	if errors.Is(err, world.ErrNotFound) {
		return nil, errUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(owner.TokenHash), []byte(secret)) != nil {
		return nil, errUnauthorized
	}
	return owner, nil
}

// ownerToken reads the bearer token, falling back to the token query
// parameter for websocket clients that cannot set headers.
func ownerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return r.URL.Query().Get("token")
}

type ownerKey struct{}

// ownerOnly wraps a handler to require a valid owner token.
func (s *Server) ownerOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := authenticate(r.Context(), s.Store, ownerToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	}
}

// ownerFrom returns the authenticated owner, or nil outside ownerOnly.
func ownerFrom(ctx context.Context) *world.Owner {
	owner, _ := ctx.Value(ownerKey{}).(*world.Owner)
	return owner
}

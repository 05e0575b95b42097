package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/barewire/storefront-orders/internal/orders"
)

type ctxKey int

const identityKey ctxKey = 0

// Claims are issued by the identity service; this service only verifies.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth verifies the Bearer token and stores the caller identity in the
// request context. Handlers behind it can rely on IdentityFrom succeeding.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			prefix, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || prefix != "Bearer" || token == "" {
				writeJSON(w, http.StatusUnauthorized, errBody("unauthorized"))
				return
			}

			claims := &Claims{}
			tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid || claims.Subject == "" {
				writeJSON(w, http.StatusUnauthorized, errBody("unauthorized"))
				return
			}

			id := orders.Identity{
				UserID: claims.Subject,
				Name:   claims.Name,
				Email:  claims.Email,
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}

func IdentityFrom(ctx context.Context) (orders.Identity, bool) {
	id, ok := ctx.Value(identityKey).(orders.Identity)
	return id, ok
}

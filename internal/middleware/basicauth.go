package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"slices"
	"strings"

	"github.com/shravanasati/ledgerdash/internal/app"
	"github.com/shravanasati/ledgerdash/internal/router"
)

const authRealm = `Basic realm="ledgerdash"`

type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// BasicAuthMiddleware rejects requests without valid credentials for one
// of accounts. Requests for the exempt paths pass through untouched.
func BasicAuthMiddleware(accounts []Account, exempt ...string) router.Middleware {
	accountMap := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		accountMap[acc.Username] = acc.Password
	}

	return func(next app.Handler) app.Handler {
		return app.HandlerFunc(func(ctx context.Context, r *app.Request) (*app.Response, error) {
			if r.URL != nil && slices.Contains(exempt, r.URL.Path) {
				return next.Handle(ctx, r)
			}

			auth := r.Headers.Get("authorization")
			encoded, ok := strings.CutPrefix(auth, "Basic ")
			if !ok {
				return unauthorized(), nil
			}

			payload, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return app.Text(400, "Invalid authorization header"), nil
			}

			user, pass, ok := strings.Cut(string(payload), ":")
			if !ok {
				return app.Text(400, "Invalid authorization header"), nil
			}

			actualPass, known := accountMap[user]
			if !known || subtle.ConstantTimeCompare([]byte(actualPass), []byte(pass)) != 1 {
				return unauthorized(), nil
			}

			return next.Handle(ctx, r)
		})
	}
}

func unauthorized() *app.Response {
	resp := app.Text(401, "Unauthorized")
	resp.Headers.Set("www-authenticate", authRealm)
	return resp
}

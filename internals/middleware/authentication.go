package middle

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"upwatch/internals/security"
	"upwatch/pkg/apperror"
	"upwatch/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
)

type callerCtxKeyType struct{}

var callerCtxKey = callerCtxKeyType{}

type Caller struct {
	Subject string
	Role    string
}

type AuthMiddleware struct {
	tokenSvc *security.TokenService
}

func NewAuthMiddleware(tokenSvc *security.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: tokenSvc,
	}
}

func (a *AuthMiddleware) Handle(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := middleware.GetReqID(ctx)

		token, err := a.extractBearerToken(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, err.Error())
			return
		}

		claims, err := a.tokenSvc.ValidateAccessToken(token)
		if err != nil {
			utils.FromAppError(w, reqID, err)
			return
		}

		if claims.Subject == "" {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "caller is unauthorised")
			return
		}

		caller := &Caller{
			Subject: claims.Subject,
			Role:    claims.Role,
		}

		newCtx := context.WithValue(ctx, callerCtxKey, caller)
		next.ServeHTTP(w, r.WithContext(newCtx))
	}

	return http.HandlerFunc(fn)
}

func (_ *AuthMiddleware) extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")

	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header")
	}

	return parts[1], nil
}

func CallerFromContext(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(callerCtxKey).(*Caller)
	return caller, ok
}

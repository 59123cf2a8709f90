package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AppClaims defines our custom JWT claims structure. The subject carries the
// numeric account id; Admin gates the administrative endpoints.
type AppClaims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// NewAuthMiddleware validates the session token (cookie or bearer header)
// and resolves the user id into the request metadata. A failed validation
// refuses the request; no session is ever created for it.
func NewAuthMiddleware(logger *slog.Logger, jwtSecret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// couldn't extract metadata from request so something went wrong with previous middlewares
			reqMeta, ok := ReqMetadataFrom(r.Context())
			if !ok {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				logger.Warn("no session token attached to request", "ip", reqMeta.IP)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Parse and validate the JWT token with HMAC signing
			token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid session token presented", "ip", reqMeta.IP, slog.Any("error", err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(*AppClaims)
			if !ok {
				logger.Error("failed to parse custom JWT claims", slog.Any("ip", reqMeta.IP))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn("valid token with unusable 'sub' claim", "ip", reqMeta.IP, "sub", claims.Subject)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			reqMeta.UserID = userID
			reqMeta.IsAdmin = claims.Admin
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("session-token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

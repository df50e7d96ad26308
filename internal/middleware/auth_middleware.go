package middleware

import (
	"context"
	"net/http"
	"strings"

	"social-go/internal/auth"
)

// contextKey 是用于在 context.Context 中存储值的自定义类型，以避免键冲突。
type contextKey string

// UserIDKey 是用于在上下文中存储操作者用户ID的键。
const UserIDKey contextKey = "userID"

// AuthMiddleware 验证 Bearer JWT 并把操作者的用户ID写入请求上下文。
// 核心逻辑只信任这个ID并做所有权检查，认证本身在令牌签发方完成。
func AuthMiddleware(jwtSecretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "请求未包含授权令牌", http.StatusUnauthorized)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				http.Error(w, "授权头部格式无效", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(headerParts[1], jwtSecretKey)
			if err != nil {
				http.Error(w, "令牌无效", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext 从上下文中获取操作者的用户ID。
// 如果用户ID不存在或类型不正确，返回 0 和 false。
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}

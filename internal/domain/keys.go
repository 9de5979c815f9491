package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// UserIDFromContext extracts the authenticated user ID placed by the auth
// middleware. The second return is false when the request is unauthenticated.
func UserIDFromContext(ctx interface{ Value(any) any }) (int64, bool) {
	v := ctx.Value(string(KeyUserID))
	if v == nil {
		v = ctx.Value(KeyUserID)
	}
	id, ok := v.(int64)
	return id, ok
}

// RoleFromContext extracts the authenticated user's role.
func RoleFromContext(ctx interface{ Value(any) any }) string {
	v := ctx.Value(string(KeyUserRole))
	if v == nil {
		v = ctx.Value(KeyUserRole)
	}
	role, _ := v.(string)
	return role
}

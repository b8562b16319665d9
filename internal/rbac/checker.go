package rbac

import (
	"context"
	"strings"
)

type Checker struct {
	RolePermissions map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	perms, ok := c.RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == "*" || matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// ---- caller identity in context ----

type roleKey struct{}
type subjectKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(roleKey{}).(string); ok {
		return s
	}
	return ""
}

// WithSubject stores the authenticated user id.
func WithSubject(ctx context.Context, sub int64) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

func SubjectFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(subjectKey{}).(int64); ok {
		return v
	}
	return 0
}

// WithUsername stores the authenticated username alongside the subject.
func WithUsername(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, usernameKey{}, name)
}

func UsernameFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(usernameKey{}).(string); ok {
		return s
	}
	return ""
}

type usernameKey struct{}

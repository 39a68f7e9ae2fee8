package models

// UserRole is the Postgres role Supabase puts in the token.
type UserRole string

const (
	RoleAnon          UserRole = "anon"
	RoleAuthenticated UserRole = "authenticated"
	RoleServiceRole   UserRole = "service_role"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

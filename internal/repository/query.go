package repository

import (
	"fmt"
	"strings"

	"github.com/ead/authuser/internal/model"
)

// userColumns maps wire sort/filter names to storage column names. Both
// SurrealDB fields and PostgreSQL columns use the same snake_case names.
var userColumns = map[string]string{
	model.SortUserName:       "user_name",
	model.SortFullName:       "full_name",
	model.SortEmail:          "email",
	model.SortUserStatus:     "user_status",
	model.SortUserType:       "user_type",
	model.SortCreationDate:   "creation_date",
	model.SortLastUpdateDate: "last_update_date",
}

// sortColumn resolves a sort field to its column, falling back to user_name
func sortColumn(field string) string {
	if col, ok := userColumns[field]; ok {
		return col
	}
	return userColumns[model.DefaultSortField]
}

func sortDirection(dir model.SortDirection) string {
	if dir == model.SortAsc {
		return "ASC"
	}
	return "DESC"
}

// userFilter is a normalized view of the supported filters
type userFilter struct {
	UserType   string
	UserStatus string
	Email      string // lower-cased, substring match
	FullName   string // lower-cased, substring match
}

func newUserFilter(req model.PageRequest) userFilter {
	return userFilter{
		UserType:   req.Filter(model.FilterUserType),
		UserStatus: req.Filter(model.FilterUserStatus),
		Email:      strings.ToLower(req.Filter(model.FilterEmail)),
		FullName:   strings.ToLower(req.Filter(model.FilterFullName)),
	}
}

func (f userFilter) matches(u *model.User) bool {
	if f.UserType != "" && string(u.UserType) != f.UserType {
		return false
	}
	if f.UserStatus != "" && string(u.UserStatus) != f.UserStatus {
		return false
	}
	if f.Email != "" && !strings.Contains(strings.ToLower(u.Email), f.Email) {
		return false
	}
	if f.FullName != "" && !strings.Contains(strings.ToLower(u.FullName), f.FullName) {
		return false
	}
	return true
}

// surrealWhere renders the filter as a SurrealQL WHERE clause
func (f userFilter) surrealWhere(vars map[string]interface{}) string {
	var conds []string
	if f.UserType != "" {
		conds = append(conds, "user_type = $user_type")
		vars["user_type"] = f.UserType
	}
	if f.UserStatus != "" {
		conds = append(conds, "user_status = $user_status")
		vars["user_status"] = f.UserStatus
	}
	if f.Email != "" {
		conds = append(conds, "string::contains(string::lowercase(email), $email)")
		vars["email"] = f.Email
	}
	if f.FullName != "" {
		conds = append(conds, "string::contains(string::lowercase(full_name), $full_name)")
		vars["full_name"] = f.FullName
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// postgresWhere renders the filter as a SQL WHERE clause with positional args
func (f userFilter) postgresWhere(args []interface{}) (string, []interface{}) {
	var conds []string
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserType != "" {
		add("user_type = $%d", f.UserType)
	}
	if f.UserStatus != "" {
		add("user_status = $%d", f.UserStatus)
	}
	if f.Email != "" {
		add(`email ILIKE $%d ESCAPE '\'`, "%"+escapeLike(f.Email)+"%")
	}
	if f.FullName != "" {
		add(`full_name ILIKE $%d ESCAPE '\'`, "%"+escapeLike(f.FullName)+"%")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

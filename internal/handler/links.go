package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"
)

// Link relations exposed on user resources
const (
	RelGetUser    = "get-user"
	RelUpdateUser = "update-user"
	RelDeleteUser = "delete-user"
	RelCreateUser = "create-user"
	RelListUsers  = "list-users"
)

// Paths linked from user resources
const (
	usersPath    = "/users"
	allUsersPath = "/users/allUsers"
	signupPath   = "/auth/signup"
)

// UserLinks returns every relation for the user with the given id
func UserLinks(baseURL string, id uuid.UUID) map[string]string {
	base := strings.TrimRight(baseURL, "/")
	self := base + usersPath + "/" + id.String()
	return map[string]string{
		RelGetUser:    self,
		RelUpdateUser: self,
		RelDeleteUser: self,
		RelCreateUser: base + signupPath,
		RelListUsers:  base + allUsersPath,
	}
}

// userLinksExcept returns UserLinks minus the given relations
func userLinksExcept(baseURL string, id uuid.UUID, omit ...string) map[string]string {
	links := UserLinks(baseURL, id)
	for _, rel := range omit {
		delete(links, rel)
	}
	return links
}

// pageLinks builds self/first/last/next/prev links for a listing, keeping
// the caller's filters and ordering.
func pageLinks[T any](baseURL string, query url.Values, page *model.Page[T]) map[string]string {
	base := strings.TrimRight(baseURL, "/") + allUsersPath

	at := func(n int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(n))
		q.Set("size", strconv.Itoa(page.Size))
		q.Set("sort", page.Sort)
		q.Set("direction", string(page.Direction))
		return base + "?" + q.Encode()
	}

	last := page.TotalPages() - 1
	if last < 0 {
		last = 0
	}

	links := map[string]string{
		"self":  at(page.Number),
		"first": at(0),
		"last":  at(last),
	}
	if page.HasNext() {
		links["next"] = at(page.Number + 1)
	}
	if page.HasPrevious() {
		links["prev"] = at(page.Number - 1)
	}
	return links
}

// requestBaseURL derives scheme://host from the request, honouring
// X-Forwarded-Proto and X-Forwarded-Host set by a reverse proxy.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	host := r.Host
	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = strings.TrimSpace(strings.Split(h, ",")[0])
	}
	return scheme + "://" + host
}

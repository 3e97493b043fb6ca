package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/simp-lee/backoffice/internal/listquery"
)

// listMeta is the pagination block of a list response.
type listMeta struct {
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
}

// List fetches one page of coll. params are sent verbatim as the query string.
// A response without the collection array is an empty page; a response without
// meta reports zero pages.
func List[T any](ctx context.Context, c *Client, coll Collection[T], params listquery.Params) (listquery.Page[T], error) {
	var body map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, coll.Path, params.Values(), nil, &body); err != nil {
		return listquery.Page[T]{}, err
	}

	page := listquery.Page[T]{Rows: []T{}}
	if raw, ok := body[coll.Name]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &page.Rows); err != nil {
			return listquery.Page[T]{}, fmt.Errorf("decode %s: %w", coll.Name, err)
		}
	}
	if raw, ok := body["meta"]; ok {
		var meta listMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return listquery.Page[T]{}, fmt.Errorf("decode meta: %w", err)
		}
		page.TotalPages = meta.TotalPages
	}
	return page, nil
}

// Fetcher adapts List into the fetch function of a listquery.Loader.
func Fetcher[T any](c *Client, coll Collection[T]) listquery.FetchFunc[T] {
	return func(ctx context.Context, p listquery.Params) (listquery.Page[T], error) {
		return List(ctx, c, coll, p)
	}
}

// Get fetches one record by id.
func Get[T any](ctx context.Context, c *Client, coll Collection[T], id uint) (*T, error) {
	var out T
	if err := c.doData(ctx, http.MethodGet, itemPath(coll, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits payload to the collection and returns the created record.
func Create[T any](ctx context.Context, c *Client, coll Collection[T], payload any) (*T, error) {
	var out T
	if err := c.doData(ctx, http.MethodPost, coll.Path, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the editable fields of record id with payload.
func Update[T any](ctx context.Context, c *Client, coll Collection[T], id uint, payload any) (*T, error) {
	var out T
	if err := c.doData(ctx, http.MethodPut, itemPath(coll, id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes record id.
func Delete[T any](ctx context.Context, c *Client, coll Collection[T], id uint) error {
	return c.doData(ctx, http.MethodDelete, itemPath(coll, id), nil, nil)
}

// Token is a bearer token issued by the login endpoint.
type Token struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	var tok Token
	err := c.doData(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.Token == "" {
		return nil, fmt.Errorf("login response has no token")
	}
	return &tok, nil
}

func itemPath[T any](coll Collection[T], id uint) string {
	return coll.Path + "/" + formatID(id)
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

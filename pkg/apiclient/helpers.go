package apiclient

import (
	"context"
	"net/url"
	"strings"
)

// getResource performs a GET request to the given path and decodes the response
// body into a value of type T. Returns a pointer to the decoded value.
func getResource[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var result T
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// listResources performs a GET request to the given path and decodes the response
// body into a slice of type T.
func listResources[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var results []T
	if err := c.get(ctx, path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// createResource performs a POST request to the given path with the provided body
// and decodes the response into a value of type T.
func createResource[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// updateResource performs a PUT request to the given path with the provided body
// and decodes the response into a value of type T.
func updateResource[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.put(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// deleteResource performs a DELETE request to the given path.
func deleteResource(ctx context.Context, c *Client, path string) error {
	return c.delete(ctx, path, nil)
}

// fsPath maps a virtual tree path onto the item route, escaping each segment.
//
//	fsPath("/a b/c") == "/api/v1/fs/a%20b/c"
func fsPath(p string) string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}
	return "/api/v1/fs/" + strings.Join(segments, "/")
}

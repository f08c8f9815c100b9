package kong

import (
	"context"
	"fmt"
	"net/http"
)

// Status summarises the health of a Kong node.
type Status struct {
	Version           string
	DatabaseReachable bool
	ActiveConnections int64
	TotalRequests     int64
}

// Status reads the node information and the /status endpoint.
func (c *Client) Status(ctx context.Context) (Status, error) {
	info, _, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return Status{}, err
	}

	payload, found, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return Status{}, err
	}

	if !found {
		return Status{}, fmt.Errorf("%w: GET /status returned 404", ErrAPI)
	}

	return Status{
		Version:           getString(info, "version"),
		DatabaseReachable: getBool(payload, "database.reachable"),
		ActiveConnections: getInt(payload, "server.connections_active"),
		TotalRequests:     getInt(payload, "server.total_requests"),
	}, nil
}

// ServiceExists reports whether a service called name exists.
func (c *Client) ServiceExists(ctx context.Context, name string) (bool, error) {
	_, found, err := c.do(ctx, http.MethodGet, "/services/"+escape(name), nil)

	return found, err
}

// RouteExists reports whether a route called name exists.
func (c *Client) RouteExists(ctx context.Context, name string) (bool, error) {
	_, found, err := c.do(ctx, http.MethodGet, "/routes/"+escape(name), nil)

	return found, err
}

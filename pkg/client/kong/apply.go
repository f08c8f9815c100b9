package kong

import (
	"context"
	"fmt"
	"net/http"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/tidwall/gjson"
)

// Action is what Apply did with one object.
type Action string

const (
	// ActionUpserted means a service or route was written with PUT.
	ActionUpserted Action = "upserted"
	// ActionCreated means a plugin was created.
	ActionCreated Action = "created"
	// ActionUpdated means an existing plugin was patched.
	ActionUpdated Action = "updated"
)

// Event reports one applied object.
type Event struct {
	Kind   string
	Name   string
	Scope  string
	Action Action
}

// Scope selects where a plugin is attached.
type Scope struct {
	// Kind is "service", "route" or empty for global plugins.
	Kind string
	Name string
}

func (s Scope) String() string {
	if s.Kind == "" {
		return "global"
	}

	return s.Kind + " " + s.Name
}

func (s Scope) pluginsPath() string {
	switch s.Kind {
	case "service":
		return "/services/" + escape(s.Name) + "/plugins"
	case "route":
		return "/routes/" + escape(s.Name) + "/plugins"
	default:
		return "/plugins"
	}
}

// Apply writes every configured service, route and plugin in order and stops at the first error.
// Nothing already written is rolled back.
func (c *Client) Apply(ctx context.Context, cfg v1alpha1.Kong, report func(Event)) error {
	if report == nil {
		report = func(Event) {}
	}

	for _, service := range cfg.Services {
		err := c.UpsertService(ctx, service)
		if err != nil {
			return err
		}

		report(Event{Kind: "service", Name: service.Name, Action: ActionUpserted})

		for _, route := range service.Routes {
			err = c.UpsertRoute(ctx, service.Name, route)
			if err != nil {
				return err
			}

			report(Event{Kind: "route", Name: route.Name, Scope: service.Name, Action: ActionUpserted})

			err = c.applyPlugins(ctx, Scope{Kind: "route", Name: route.Name}, route.Plugins, report)
			if err != nil {
				return err
			}
		}

		err = c.applyPlugins(ctx, Scope{Kind: "service", Name: service.Name}, service.Plugins, report)
		if err != nil {
			return err
		}
	}

	return c.applyPlugins(ctx, Scope{}, cfg.Plugins, report)
}

func (c *Client) applyPlugins(
	ctx context.Context,
	scope Scope,
	plugins []v1alpha1.KongPlugin,
	report func(Event),
) error {
	for _, plugin := range plugins {
		action, err := c.ApplyPlugin(ctx, scope, plugin)
		if err != nil {
			return err
		}

		report(Event{Kind: "plugin", Name: plugin.Name, Scope: scope.String(), Action: action})
	}

	return nil
}

// UpsertService writes a service with PUT /services/{name}.
func (c *Client) UpsertService(ctx context.Context, service v1alpha1.KongService) error {
	body := map[string]any{"name": service.Name, "url": service.URL}

	if service.Retries != nil {
		body["retries"] = *service.Retries
	}

	setPositive(body, "connect_timeout", service.ConnectTimeout)
	setPositive(body, "read_timeout", service.ReadTimeout)
	setPositive(body, "write_timeout", service.WriteTimeout)

	_, _, err := c.do(ctx, http.MethodPut, "/services/"+escape(service.Name), body)
	if err != nil {
		return fmt.Errorf("upsert service %s: %w", service.Name, err)
	}

	return nil
}

// UpsertRoute writes a route bound to service with PUT /routes/{name}.
func (c *Client) UpsertRoute(ctx context.Context, service string, route v1alpha1.KongRoute) error {
	body := map[string]any{
		"name":          route.Name,
		"service":       map[string]string{"name": service},
		"preserve_host": route.PreserveHost,
	}

	setNonEmpty(body, "paths", route.Paths)
	setNonEmpty(body, "hosts", route.Hosts)
	setNonEmpty(body, "methods", route.Methods)
	setNonEmpty(body, "protocols", route.Protocols)

	if route.StripPath != nil {
		body["strip_path"] = *route.StripPath
	}

	_, _, err := c.do(ctx, http.MethodPut, "/routes/"+escape(route.Name), body)
	if err != nil {
		return fmt.Errorf("upsert route %s: %w", route.Name, err)
	}

	return nil
}

// ApplyPlugin patches the plugin with the same name in scope, or creates it.
func (c *Client) ApplyPlugin(ctx context.Context, scope Scope, plugin v1alpha1.KongPlugin) (Action, error) {
	existingID, err := c.findPlugin(ctx, scope, plugin.Name)
	if err != nil {
		return "", fmt.Errorf("find plugin %s on %s: %w", plugin.Name, scope, err)
	}

	body := map[string]any{"name": plugin.Name, "enabled": true}
	if plugin.Enabled != nil {
		body["enabled"] = *plugin.Enabled
	}

	if len(plugin.Config) > 0 {
		body["config"] = plugin.Config
	}

	if existingID != "" {
		_, _, err = c.do(ctx, http.MethodPatch, "/plugins/"+escape(existingID), body)
		if err != nil {
			return "", fmt.Errorf("update plugin %s on %s: %w", plugin.Name, scope, err)
		}

		return ActionUpdated, nil
	}

	_, _, err = c.do(ctx, http.MethodPost, scope.pluginsPath(), body)
	if err != nil {
		return "", fmt.Errorf("create plugin %s on %s: %w", plugin.Name, scope, err)
	}

	return ActionCreated, nil
}

// findPlugin walks the paginated plugin list of scope. Global scope only matches plugins
// attached to no service, route or consumer.
func (c *Client) findPlugin(ctx context.Context, scope Scope, name string) (string, error) {
	path := scope.pluginsPath()

	for path != "" {
		payload, found, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return "", err
		}

		if !found {
			return "", nil
		}

		var id string

		gjson.GetBytes(payload, "data").ForEach(func(_, plugin gjson.Result) bool {
			if plugin.Get("name").String() != name {
				return true
			}

			if scope.Kind == "" && !isGlobal(plugin) {
				return true
			}

			id = plugin.Get("id").String()

			return false
		})

		if id != "" {
			return id, nil
		}

		path = gjson.GetBytes(payload, "next").String()
	}

	return "", nil
}

func isGlobal(plugin gjson.Result) bool {
	for _, key := range []string{"service", "route", "consumer"} {
		value := plugin.Get(key)
		if value.Exists() && value.Type != gjson.Null {
			return false
		}
	}

	return true
}

func setPositive(body map[string]any, key string, value int) {
	if value > 0 {
		body[key] = value
	}
}

func setNonEmpty(body map[string]any, key string, values []string) {
	if len(values) > 0 {
		body[key] = values
	}
}

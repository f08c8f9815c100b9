// Package kong applies declarative services, routes and plugins through the Kong Admin API.
//
// Services and routes are written with PUT by name, so re-running converges on the
// configured state. Plugins have no natural key in Kong; they are matched by plugin name
// within their scope and PATCHed when found, POSTed otherwise.
package kong

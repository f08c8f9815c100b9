// Package client contains the clients deployctl talks to the outside world with.
//
//   - argocd: Application status, refresh and declarative cluster secrets
//   - compose: the docker compose CLI
//   - docker: image builds, pushes and standalone containers through the Engine API
//   - github: latest workflow runs through the Actions API
//   - httpclient: retrying HTTP clients shared by the HTTP based clients
//   - kong: services, routes and plugins through the Kong Admin API
//   - netretry: classification of transient network errors
//   - oci: registry checks that pushed tags exist
//   - watchtower: the Watchtower HTTP update API
package client

package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/client/kong"
)

// ErrGatewayIncomplete is returned when configured Kong services or routes are missing.
var ErrGatewayIncomplete = errors.New("gateway is missing configured objects")

// GatewayReader reads Kong admin state.
type GatewayReader interface {
	Status(ctx context.Context) (kong.Status, error)
	ServiceExists(ctx context.Context, name string) (bool, error)
	RouteExists(ctx context.Context, name string) (bool, error)
}

// GatewayReport is the state of Kong compared with the configuration.
type GatewayReport struct {
	Status  kong.Status
	Found   []string
	Missing []string
}

// Complete reports whether every configured service and route exists.
func (r GatewayReport) Complete() bool {
	return len(r.Missing) == 0
}

// InspectGateway reads the node status and looks up every configured service and route.
// Objects are named service/<name> and route/<name>.
func InspectGateway(ctx context.Context, reader GatewayReader, cfg v1alpha1.Kong) (GatewayReport, error) {
	status, err := reader.Status(ctx)
	if err != nil {
		return GatewayReport{}, err
	}

	report := GatewayReport{Status: status}

	record := func(kind, name string, exists bool) {
		if exists {
			report.Found = append(report.Found, kind+"/"+name)
		} else {
			report.Missing = append(report.Missing, kind+"/"+name)
		}
	}

	for _, service := range cfg.Services {
		exists, err := reader.ServiceExists(ctx, service.Name)
		if err != nil {
			return GatewayReport{}, err
		}

		record("service", service.Name, exists)

		for _, route := range service.Routes {
			exists, err := reader.RouteExists(ctx, route.Name)
			if err != nil {
				return GatewayReport{}, err
			}

			record("route", route.Name, exists)
		}
	}

	return report, nil
}

// KongCheck passes when the admin API answers and every configured object exists.
func KongCheck(reader GatewayReader, cfg v1alpha1.Kong) Check {
	return func(ctx context.Context) (string, error) {
		if cfg.AdminURL == "" {
			return "", fmt.Errorf("%w: kong.adminURL is empty", ErrNotConfigured)
		}

		report, err := InspectGateway(ctx, reader, cfg)
		if err != nil {
			return "", err
		}

		if !report.Complete() {
			return "", fmt.Errorf("%w: %s", ErrGatewayIncomplete, strings.Join(report.Missing, ", "))
		}

		return fmt.Sprintf(
			"kong %s, %d objects present, database reachable: %t",
			report.Status.Version, len(report.Found), report.Status.DatabaseReachable,
		), nil
	}
}

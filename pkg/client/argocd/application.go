package argocd

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	// SyncStatusSynced is the sync status of an Application matching its source.
	SyncStatusSynced = "Synced"
	// HealthStatusHealthy is the health status of an Application whose resources are healthy.
	HealthStatusHealthy = "Healthy"

	refreshAnnotationKey = "argocd.argoproj.io/refresh"
	refreshNormal        = "normal"
	refreshHard          = "hard"
)

// ApplicationGVR is the resource of Argo CD Applications.
//
//nolint:gochecknoglobals // fixed API coordinates
var ApplicationGVR = schema.GroupVersionResource{
	Group:    "argoproj.io",
	Version:  "v1alpha1",
	Resource: "applications",
}

// Status summarizes an Application.
type Status struct {
	Name           string
	Sync           string
	Health         string
	Revision       string
	OperationPhase string
	Message        string
}

// Ready reports whether the Application is Synced and Healthy.
func (s Status) Ready() bool {
	return s.Sync == SyncStatusSynced && s.Health == HealthStatusHealthy
}

func (s Status) String() string {
	parts := []string{"sync=" + valueOrUnknown(s.Sync), "health=" + valueOrUnknown(s.Health)}
	if s.Revision != "" {
		parts = append(parts, "revision="+s.Revision)
	}

	return strings.Join(parts, " ")
}

func valueOrUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}

	return value
}

// statusFromApplication reads the status block of an Application object.
func statusFromApplication(app *unstructured.Unstructured) Status {
	status := Status{Name: app.GetName()}

	status.Sync, _, _ = unstructured.NestedString(app.Object, "status", "sync", "status")
	status.Health, _, _ = unstructured.NestedString(app.Object, "status", "health", "status")
	status.Revision, _, _ = unstructured.NestedString(app.Object, "status", "sync", "revision")
	status.OperationPhase, _, _ = unstructured.NestedString(app.Object, "status", "operationState", "phase")
	status.Message, _, _ = unstructured.NestedString(app.Object, "status", "operationState", "message")

	return status
}

// applicationFailure returns an error when the Application reports a failed operation or
// a source problem that waiting will not fix.
func applicationFailure(app *unstructured.Unstructured) error {
	status := statusFromApplication(app)

	if status.OperationPhase == "Error" || status.OperationPhase == "Failed" {
		if isSourceRelatedError(status.Message) {
			return fmt.Errorf("%w: %s", ErrSourceNotAvailable, status.Message)
		}

		return fmt.Errorf("%w: %s", ErrOperationFailed, status.Message)
	}

	conditions, _, _ := unstructured.NestedSlice(app.Object, "status", "conditions")

	for _, condition := range conditions {
		condMap, ok := condition.(map[string]any)
		if !ok {
			continue
		}

		condType, _, _ := unstructured.NestedString(condMap, "type")
		condMessage, _, _ := unstructured.NestedString(condMap, "message")

		if (condType == "ComparisonError" || condType == "SyncError") && isSourceRelatedError(condMessage) {
			return fmt.Errorf("%w: %s", ErrSourceNotAvailable, condMessage)
		}
	}

	return nil
}

func isSourceRelatedError(message string) bool {
	patterns := []string{
		"manifest unknown",
		"not found",
		"does not exist",
		"failed to fetch",
		"repository not found",
		"unable to resolve",
		"connection refused",
	}

	lower := strings.ToLower(message)
	for _, pattern := range patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return false
}

package k8s

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/siderolabs/go-retry/retry"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"
)

const (
	defaultForwardReadyTimeout = 30 * time.Second
	forwardProbeInterval       = 200 * time.Millisecond
	loopbackAddress            = "127.0.0.1"
)

// ErrPortForwardNotReady is returned when the tunnel never accepts connections.
var ErrPortForwardNotReady = errors.New("port-forward did not become ready")

// ForwardOptions selects the pod port to expose locally.
type ForwardOptions struct {
	Namespace  string
	Pod        string
	RemotePort int
	// LocalPort of 0 picks a free port.
	LocalPort int
}

// Tunnel is an open port-forward. Close stops it.
type Tunnel struct {
	LocalPort int

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Close stops forwarding and waits for the forwarder goroutine to exit.
// A Tunnel built outside Forward has nothing to stop.
func (t *Tunnel) Close() {
	t.closeOnce.Do(func() {
		if t.stop == nil {
			return
		}

		close(t.stop)
		<-t.done
	})
}

// URL returns an http URL for path on the local end of the tunnel.
func (t *Tunnel) URL(path string) string {
	return "http://" + net.JoinHostPort(loopbackAddress, strconv.Itoa(t.LocalPort)) + path
}

// PortForwarder opens tunnels to pods.
type PortForwarder interface {
	Forward(ctx context.Context, opts ForwardOptions) (*Tunnel, error)
}

// SPDYForwarder forwards through the API server's pods/portforward subresource.
type SPDYForwarder struct {
	restConfig   *rest.Config
	clientset    kubernetes.Interface
	readyTimeout time.Duration
	out          io.Writer
}

// NewSPDYForwarder returns a forwarder. Forwarder chatter goes to out, which may be nil.
func NewSPDYForwarder(restConfig *rest.Config, clientset kubernetes.Interface, out io.Writer) *SPDYForwarder {
	if out == nil {
		out = io.Discard
	}

	return &SPDYForwarder{
		restConfig:   restConfig,
		clientset:    clientset,
		readyTimeout: defaultForwardReadyTimeout,
		out:          out,
	}
}

// Forward opens the tunnel and returns once the local port accepts connections.
func (f *SPDYForwarder) Forward(ctx context.Context, opts ForwardOptions) (*Tunnel, error) {
	requestURL := f.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(opts.Namespace).
		Name(opts.Pod).
		SubResource("portforward").
		URL()

	transport, upgrader, err := spdy.RoundTripperFor(f.restConfig)
	if err != nil {
		return nil, fmt.Errorf("create spdy round tripper: %w", err)
	}

	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, requestURL)

	tunnel := &Tunnel{stop: make(chan struct{}), done: make(chan struct{})}
	readyCh := make(chan struct{})
	errCh := make(chan error, 1)

	forwarder, err := portforward.NewOnAddresses(
		dialer,
		[]string{loopbackAddress},
		[]string{fmt.Sprintf("%d:%d", opts.LocalPort, opts.RemotePort)},
		tunnel.stop,
		readyCh,
		f.out,
		f.out,
	)
	if err != nil {
		return nil, fmt.Errorf("create port-forward to %s/%s: %w", opts.Namespace, opts.Pod, err)
	}

	go func() {
		defer close(tunnel.done)

		errCh <- forwarder.ForwardPorts()
	}()

	select {
	case <-readyCh:
	case err = <-errCh:
		return nil, fmt.Errorf("port-forward to %s/%s: %w", opts.Namespace, opts.Pod, err)
	case <-ctx.Done():
		tunnel.Close()

		return nil, fmt.Errorf("port-forward to %s/%s: %w", opts.Namespace, opts.Pod, ctx.Err())
	}

	ports, err := forwarder.GetPorts()
	if err != nil {
		tunnel.Close()

		return nil, fmt.Errorf("%w: %w", ErrPortForwardNotReady, err)
	}

	if len(ports) == 0 {
		tunnel.Close()

		return nil, fmt.Errorf("%w: no forwarded ports", ErrPortForwardNotReady)
	}

	tunnel.LocalPort = int(ports[0].Local)

	err = waitForListener(ctx, tunnel.LocalPort, f.readyTimeout)
	if err != nil {
		tunnel.Close()

		return nil, err
	}

	return tunnel, nil
}

func waitForListener(ctx context.Context, port int, timeout time.Duration) error {
	address := net.JoinHostPort(loopbackAddress, strconv.Itoa(port))

	err := retry.Constant(timeout, retry.WithUnits(forwardProbeInterval)).RetryWithContext(
		ctx,
		func(ctx context.Context) error {
			var dialer net.Dialer

			conn, dialErr := dialer.DialContext(ctx, "tcp", address)
			if dialErr != nil {
				return retry.ExpectedError(dialErr)
			}

			_ = conn.Close()

			return nil
		},
	)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrPortForwardNotReady, address, err)
	}

	return nil
}

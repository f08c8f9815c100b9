// Package di wires the dependencies of deployctl commands with samber/do.
//
// Every command invocation gets a fresh injector, so tests can replace any provider
// by passing their own modules to [New].
package di

import (
	"fmt"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// VerboseFlagName is the persistent root flag that enables debug logging.
const VerboseFlagName = "verbose"

// Injector is the samber/do injector handed to command handlers.
type Injector = do.Injector

// Module registers providers on an injector.
type Module func(Injector) error

// CommandIO carries the streams and verbosity of the running command.
type CommandIO struct {
	Out     io.Writer
	ErrOut  io.Writer
	Verbose bool
}

// Runtime holds the modules used to build an injector per invocation.
type Runtime struct {
	modules []Module
}

// New returns a Runtime from modules. Nil modules are skipped.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke builds an injector from the runtime modules followed by extra, runs handler
// against it and shuts the injector down afterwards.
func (r *Runtime) Invoke(handler func(Injector) error, extra ...Module) error {
	injector := do.New()

	defer func() {
		_ = injector.Shutdown()
	}()

	for _, module := range append(append([]Module{}, r.modules...), extra...) {
		if module == nil {
			continue
		}

		err := module(injector)
		if err != nil {
			return err
		}
	}

	return handler(injector)
}

// RunEWithRuntime adapts handler to cobra's RunE. The command's streams and the
// --verbose flag are registered as a CommandIO value.
func RunEWithRuntime(
	runtimeContainer *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtimeContainer.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		}, ProvideCommandIO(commandIO(cmd)))
	}
}

// ProvideCommandIO registers value as the CommandIO of the invocation.
func ProvideCommandIO(value CommandIO) Module {
	return func(i Injector) error {
		do.ProvideValue(i, value)

		return nil
	}
}

// ProvideValue registers value for type T, replacing any provider declared before.
func ProvideValue[T any](value T) Module {
	return func(i Injector) error {
		do.OverrideValue(i, value)

		return nil
	}
}

func commandIO(cmd *cobra.Command) CommandIO {
	verbose := false

	if flag := cmd.Flags().Lookup(VerboseFlagName); flag != nil {
		verbose = flag.Value.String() == "true"
	}

	return CommandIO{Out: cmd.OutOrStdout(), ErrOut: cmd.ErrOrStderr(), Verbose: verbose}
}

func resolve[T any](injector Injector, name string) (T, error) {
	value, err := do.Invoke[T](injector)
	if err != nil {
		var zero T

		return zero, fmt.Errorf("resolve %s dependency: %w", name, err)
	}

	return value, nil
}

package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/io/configmanager"
	"github.com/devantler-tech/deployctl/pkg/utils/envvar"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DEPLOYCTL_SPEC_TAG.
const EnvPrefix = "DEPLOYCTL"

// ErrFlagBinding is returned when a flag cannot be bound to a config key.
var ErrFlagBinding = errors.New("failed to bind flag")

// ConfigManager loads project configuration.
type ConfigManager struct {
	Viper  *viper.Viper
	Config *v1alpha1.Project
	Writer io.Writer

	configLoaded    bool
	configFileFound bool
	lookup          envvar.Lookup
}

var _ configmanager.ConfigManager[v1alpha1.Project] = (*ConfigManager)(nil)

// NewConfigManager creates a manager reading configFile, or deployctl.yaml in the working
// directory when configFile is empty.
func NewConfigManager(writer io.Writer, configFile string) *ConfigManager {
	return &ConfigManager{
		Viper:  InitializeViper(configFile),
		Config: v1alpha1.NewProject(),
		Writer: writer,
	}
}

// InitializeViper returns a viper instance with the file, env and key conventions of deployctl.
func InitializeViper(configFile string) *viper.Viper {
	viperInstance := viper.New()

	if configFile != "" {
		viperInstance.SetConfigFile(configFile)
	} else {
		viperInstance.SetConfigName(v1alpha1.DefaultConfigName)
		viperInstance.SetConfigType("yaml")
		viperInstance.AddConfigPath(".")
	}

	viperInstance.SetEnvPrefix(EnvPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows, so every scalar key is registered.
	for _, key := range ScalarKeys() {
		_ = viperInstance.BindEnv(key)
	}

	return viperInstance
}

// BindFlag makes flag override key when the user sets it.
func (m *ConfigManager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("%w: %s has no flag", ErrFlagBinding, key)
	}

	err := m.Viper.BindPFlag(key, flag)
	if err != nil {
		return fmt.Errorf("%w %s to %s: %w", ErrFlagBinding, flag.Name, key, err)
	}

	return nil
}

// SetLookup replaces the environment lookup used for ${VAR} expansion.
func (m *ConfigManager) SetLookup(lookup envvar.Lookup) {
	m.lookup = lookup
}

// Load loads the configuration. Subsequent calls return the cached config.
func (m *ConfigManager) Load(opts configmanager.LoadOptions) (*v1alpha1.Project, error) {
	if m.configLoaded {
		return m.Config, nil
	}

	if !opts.IgnoreConfigFile {
		err := m.readConfig(opts.Silent)
		if err != nil {
			return nil, err
		}
	}

	config, err := m.unmarshal()
	if err != nil {
		return nil, err
	}

	if !opts.SkipValidation {
		err = config.Validate()
		if err != nil {
			return nil, fmt.Errorf("failed to validate config: %w", err)
		}
	}

	m.Config = config
	m.configLoaded = true

	if !opts.Silent {
		m.notifyLoaded(opts.Timer)
	}

	return m.Config, nil
}

// ConfigFileFound reports whether Load read a config file.
func (m *ConfigManager) ConfigFileFound() bool {
	return m.configFileFound
}

func (m *ConfigManager) readConfig(silent bool) error {
	err := m.Viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		m.configFileFound = false

		if !silent {
			notify.Infof(m.Writer, "no %s.yaml found, using defaults", v1alpha1.DefaultConfigName)
		}

		return nil
	}

	m.configFileFound = true

	if !silent {
		notify.Activityf(m.Writer, "using config '%s'", m.Viper.ConfigFileUsed())
	}

	return nil
}

func (m *ConfigManager) unmarshal() (*v1alpha1.Project, error) {
	lookup := m.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string

	decoderConfig := func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			expandEnvHook(lookup, &missing),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}

	config := &v1alpha1.Project{}

	err := m.Viper.Unmarshal(config, decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if m.configFileFound {
		err = restoreMapKeys(m.Viper.ConfigFileUsed(), config)
		if err != nil {
			return nil, err
		}
	}

	v1alpha1.SetDefaults(config)

	if len(missing) > 0 {
		notify.Warningf(m.Writer, "unset environment variables in config: %s", strings.Join(dedupe(missing), ", "))
	}

	return config, nil
}

func (m *ConfigManager) notifyLoaded(tmr timer.Timer) {
	if tmr != nil {
		notify.SuccessWithTimerf(m.Writer, tmr, "config loaded")

		return
	}

	notify.Successf(m.Writer, "config loaded")
}

// expandEnvHook expands ${VAR} placeholders in every string value and records unset names.
func expandEnvHook(lookup envvar.Lookup, missing *[]string) mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, _ reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		value, ok := data.(string)
		if !ok {
			return data, nil
		}

		*missing = append(*missing, envvar.Missing(value, lookup)...)

		return envvar.ExpandWith(value, lookup), nil
	}
}

// ScalarKeys lists the dotted viper keys of every scalar and scalar-slice field of a project.
// Lists of objects (images, kong services) can only come from the config file.
func ScalarKeys() []string {
	return collectKeys(reflect.TypeFor[v1alpha1.Project](), "")
}

//nolint:gochecknoglobals // type identity used while walking the config struct
var durationType = reflect.TypeFor[time.Duration]()

func collectKeys(typ reflect.Type, prefix string) []string {
	var keys []string

	for i := range typ.NumField() {
		field := typ.Field(i)

		name := field.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		fieldType := field.Type
		switch {
		case fieldType == durationType:
			keys = append(keys, key)
		case fieldType.Kind() == reflect.Struct:
			keys = append(keys, collectKeys(fieldType, key)...)
		case fieldType.Kind() == reflect.Slice && fieldType.Elem().Kind() == reflect.Struct:
			continue
		case fieldType.Kind() == reflect.Map:
			continue
		default:
			keys = append(keys, key)
		}
	}

	return keys
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))

	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}

	return out
}

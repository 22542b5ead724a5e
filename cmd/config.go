package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pentesthub/pentest-hub/internal/sql"
)

const (
	defaultConfigFilename = "pentest-hub"
	envPrefix             = "PENTEST_HUB"
)

// initializeConfig reads the config file and the environment and applies them
// to every flag the user did not set on the command line.
func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("%w: config: %w", errFlagRetrieval, err)
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(defaultConfigFilename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pentest-hub/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// PENTEST_HUB_DB_PATH maps to --db-path.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return bindFlags(cmd, v)
}

// bindFlags copies config and environment values into the flags left unset.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				errs = append(errs, fmt.Errorf("invalid value for %s: %w", f.Name, err))
			}
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, fmt.Errorf("could not bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// databaseConfig builds the database configuration from the db-* flags.
func databaseConfig(cmd *cobra.Command) (*sql.DatabaseConfig, error) {
	flags := cmd.Flags()
	keys := []string{
		"db-type", "db-path", "db-host", "db-port", "db-user", "db-password",
		"db-name", "db-ssl-mode", "db-instance-connection-name", "db-log-level",
	}
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := flags.GetString(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errFlagRetrieval, key, err)
		}
		values[key] = value
	}
	return &sql.DatabaseConfig{
		DBType:                   values["db-type"],
		DBPath:                   values["db-path"],
		DBHost:                   values["db-host"],
		DBPort:                   values["db-port"],
		DBUser:                   values["db-user"],
		DBPassword:               values["db-password"],
		DBName:                   values["db-name"],
		DBSSLMode:                values["db-ssl-mode"],
		DBInstanceConnectionName: values["db-instance-connection-name"],
		DBLogLevel:               values["db-log-level"],
	}, nil
}

package options

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tableflip.dev/stow/pkg/store"
)

// ConnectionOptions are the persistent flags that override config values.
type ConnectionOptions struct {
	Server   string
	LogFile  string
	LogLevel string
}

// AddConnectionArgs registers the persistent flags on cmd and binds them to
// the matching config keys on v.
func AddConnectionArgs(cmd *cobra.Command, o *ConnectionOptions, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.Server, "server", "s", "",
		"Inventory service base URL. Overrides the server config value.")
	flags.StringVar(&o.LogFile, "log-file", "",
		"Write logs to this file. Logs are discarded when unset.")
	flags.StringVar(&o.LogLevel, "log-level", "",
		"Log level: debug, info, warn or error.")
	return bind(v, flags, map[string]string{
		"server":    store.KeyServer,
		"log-file":  store.KeyLogFile,
		"log-level": store.KeyLogLevel,
	})
}

func bind(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

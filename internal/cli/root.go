package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const apiPrefix = "/api/v1"

// NewRootCommand builds the fxconv command tree. Flags may also be set
// through FXCONV_* environment variables (FXCONV_API, FXCONV_API_KEY, ...).
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FXCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          "fxconv",
		Short:        "Query exchange rates and convert amounts",
		Version:      "v1.0.0",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("api", "http://localhost:8080", "Base URL of the conversion service")
	flags.String("api-key", "", "API key sent in the X-Api-Key header")
	flags.String("token", "", "JWT bearer token")
	flags.Duration("timeout", defaultTimeout, "Request timeout")
	_ = v.BindPFlags(flags)

	client := func() *apiClient { return newAPIClient(v) }

	rootCmd.AddCommand(
		convertCommand(client),
		ratesCommand(client),
		statusCommand(client),
		syncCommand(client),
	)
	return rootCmd
}

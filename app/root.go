// Package app implements the main application commands.
package app

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoSlider/GoSlider/internal/config"
	"github.com/GoSlider/GoSlider/internal/logger"
)

var (
	configPath string // directory holding main.toml
	envFile    string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "goslider",
	Short: "GoSlider serves image carousels",
	Long: `GoSlider serves image carousel blocks. Each slider holds an ordered
list of image slides and is rendered with SlidesJS or bxSlider.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := godotenv.Load(envFile); err != nil {
			log.Debug().Err(err).Str("file", envFile).Msg("no env file loaded")
		}

		var err error
		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err
		}

		return logger.Init(cfg.Log)
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory of main.toml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

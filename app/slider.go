package app

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/GoSlider/GoSlider/internal/daemon"
	"github.com/GoSlider/GoSlider/internal/slider"
)

var (
	copyName string

	sliderCmd = &cobra.Command{
		Use:   "slider",
		Short: "Create, copy and delete slider instances",
	}

	sliderCreateCmd = &cobra.Command{
		Use:   "create NAME",
		Short: "Create a slider with the default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, err := openInstances(cmd)
			if err != nil {
				return err
			}

			s, err := instances.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created slider %d %q\n", s.ID, s.Name)

			return err
		},
	}

	sliderCopyCmd = &cobra.Command{
		Use:   "copy ID",
		Short: "Copy a slider with its settings, slides and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cast.ToUint64E(args[0])
			if err != nil {
				return fmt.Errorf("invalid slider id %q: %w", args[0], err)
			}

			instances, err := openInstances(cmd)
			if err != nil {
				return err
			}

			s, err := instances.Copy(cmd.Context(), id, copyName)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "copied slider %d to %d %q\n", id, s.ID, s.Name)

			return err
		},
	}

	sliderDeleteCmd = &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a slider with its slides and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cast.ToUint64E(args[0])
			if err != nil {
				return fmt.Errorf("invalid slider id %q: %w", args[0], err)
			}

			instances, err := openInstances(cmd)
			if err != nil {
				return err
			}

			if err = instances.Delete(cmd.Context(), id); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted slider %d\n", id)

			return err
		},
	}
)

func openInstances(cmd *cobra.Command) (*slider.Instances, error) {
	db, err := daemon.OpenDB(&cfg)
	if err != nil {
		return nil, err
	}

	assets, _, err := daemon.OpenAssets(cmd.Context(), &cfg)
	if err != nil {
		return nil, err
	}

	_, instances := daemon.NewSlider(db, assets)

	return instances, nil
}

func init() { //nolint: gochecknoinits
	sliderCopyCmd.Flags().StringVar(&copyName, "name", "", `name of the copy, default "<name> (copy)"`)

	sliderCmd.AddCommand(sliderCreateCmd, sliderCopyCmd, sliderDeleteCmd)
	rootCmd.AddCommand(sliderCmd)
}

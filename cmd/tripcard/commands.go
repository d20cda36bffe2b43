package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/render"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tripcard",
		Short:         "Plan trips and manage saved trip cards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.server, "server", "", "Trip planner server URL for upstream lookups (e.g. http://localhost:8080)")
	root.PersistentFlags().StringVar(&a.storePath, "store", defaultStorePath(), "Path of the saved trips file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logs")

	root.AddCommand(newPlanCmd(a), newListCmd(a), newRemoveCmd(a), newClearCmd(a))
	return root
}

func newPlanCmd(a *app) *cobra.Command {
	var location, date string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip and save its card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := a.logger()
			gw, err := a.gateway(log)
			if err != nil {
				return err
			}
			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}

			planner := service.NewTripPlanner(gw, store,
				service.WithLogger(log),
				service.WithClock(a.now),
			)
			trip, err := planner.Plan(cmd.Context(), domain.PlanInput{Location: location, DepartureDate: date})
			if err != nil && !errors.Is(err, domain.ErrNotPersisted) {
				log.Debug("plan failed", "error", err)
				return errors.New(service.Message(err))
			}

			if werr := render.WriteCard(cmd.OutOrStdout(), trip); werr != nil {
				return werr
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", service.Message(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&location, "location", "l", "", "Destination city")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Departure date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved trips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			trips, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return render.WriteSaved(cmd.OutOrStdout(), trips)
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Remove the saved trip at index (as shown by list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be an integer, got %q", args[0])
			}
			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			return store.RemoveAt(cmd.Context(), index)
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			return store.Clear(cmd.Context())
		},
	}
}

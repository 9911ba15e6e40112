package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/config"
	"github.com/dgallion1/affigen/internal/parser"
	"github.com/dgallion1/affigen/internal/registry"
)

func officersCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "officers",
		Short: "Manage the officer registry",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Registry database (default DB_PATH or affigen.db)")

	open := func(ctx context.Context) (*registry.Store, error) {
		path := dbPath
		if path == "" {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			path = cfg.DBPath
		}
		return registry.Open(ctx, path)
	}

	cmd.AddCommand(officersListCmd(open))
	cmd.AddCommand(officersAddCmd(open))
	cmd.AddCommand(officersDeleteCmd(open))
	cmd.AddCommand(officersImportCmd(open))
	return cmd
}

type openFunc func(ctx context.Context) (*registry.Store, error)

func officersListCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered officers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer reg.Close()

			officers, err := reg.ListOfficers(cmd.Context())
			if err != nil {
				return err
			}
			if len(officers) == 0 {
				dimColor.Fprintln(cmd.OutOrStdout(), "no officers registered")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BADGE\tNAME\tRANK\tUNIT")
			for _, o := range officers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.BadgeNumber, o.FullName, o.RankOrPosition, o.UnitOrStation)
			}
			return w.Flush()
		},
	}
}

func officersAddCmd(open openFunc) *cobra.Command {
	var o casefile.Officer

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update an officer",
		Long: `Add an officer to the registry. An existing officer with the same badge
number is replaced.

Example:
  affigen officers add --badge 12345 --name "Pedro Santos" --rank PSSg --unit "Mansalay MPS"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.DateOfBirth != "" {
				if _, err := casefile.ParseDate(o.DateOfBirth); err != nil {
					return fmt.Errorf("--dob: %w", err)
				}
			}
			reg, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer reg.Close()

			if err := reg.PutOfficer(cmd.Context(), o); err != nil {
				return err
			}
			okColor.Fprint(cmd.OutOrStdout(), "saved ")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", o.BadgeNumber, o.FullName)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.BadgeNumber, "badge", "", "Badge number")
	cmd.Flags().StringVar(&o.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&o.RankOrPosition, "rank", "", "Rank or position")
	cmd.Flags().StringVar(&o.UnitOrStation, "unit", "", "Unit or station")
	cmd.Flags().StringVar(&o.DateOfBirth, "dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.Address, "address", "", "Home address")
	cmd.Flags().StringVar(&o.ContactNumber, "contact", "", "Contact number")
	cmd.Flags().StringVar(&o.Email, "email", "", "Email")
	_ = cmd.MarkFlagRequired("badge")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func officersDeleteCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <badge>",
		Short: "Remove an officer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer reg.Close()

			if err := reg.DeleteOfficer(cmd.Context(), args[0]); err != nil {
				return err
			}
			okColor.Fprint(cmd.OutOrStdout(), "deleted ")
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}

func officersImportCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster.csv>",
		Short: "Import officers from a CSV roster",
		Long: `Import officers from a CSV roster. The header row must name at least a
badge and a name column; rank, unit, dob, address, contact and email are
optional.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			officers, err := parser.ParseOfficerRoster(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			reg, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer reg.Close()

			n, err := reg.ImportOfficers(cmd.Context(), officers)
			if err != nil {
				return err
			}
			okColor.Fprint(cmd.OutOrStdout(), "imported ")
			fmt.Fprintf(cmd.OutOrStdout(), "%d officers\n", n)
			return nil
		},
	}
}

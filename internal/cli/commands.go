package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/simp-lee/backoffice/internal/client"
	"github.com/simp-lee/backoffice/internal/console"
	"github.com/simp-lee/backoffice/internal/listquery"
)

func newCollectionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the collections adminctl knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Title", "Sortable", "Filterable"})
			for _, name := range client.Names() {
				coll, _ := client.Lookup(name)
				var sortable, filterable int
				for _, col := range coll.Columns {
					if col.Sortable {
						sortable++
					}
					if col.Filterable {
						filterable++
					}
				}
				t.AppendRow(table.Row{coll.Name, coll.Title, sortable, filterable})
			}
			t.Render()
			return nil
		},
	}
}

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange admin credentials for a bearer token",
		Example: `  # Print a token and reuse it
  export ADMINCTL_TOKEN=$(adminctl login --email root@example.com --password secret --quiet)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			tok, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				_, _ = fmt.Fprintln(out, tok.Token)
				return nil
			}
			_, _ = fmt.Fprintf(out, "token:   %s\n", tok.Token)
			if tok.ExpiresAt > 0 {
				_, _ = fmt.Fprintf(out, "expires: %s\n", time.Unix(tok.ExpiresAt, 0).Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().BoolP("quiet", "q", false, "print the token only")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := lookupCollection(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			c, _, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), c, coll, id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %d\n", coll.Name, id)
			return nil
		},
	}
}

func newBrowseCommand() *cobra.Command {
	var stateID uint

	cmd := &cobra.Command{
		Use:   "browse <collection>",
		Short: "Open an interactive data table",
		Long: `Browse one collection in a full-screen table.

Keys: ←/→ page, +/- page size, [/] pick column, s sort, / search,
f filter (column=value[,value]), space select, x delete, r refresh, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := collectionFor(args[0], stateID)
			if err != nil {
				return err
			}
			c, sess, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			return console.Run(cmd.Context(), console.Config{
				Collection: coll,
				Fetch:      client.Fetcher(c, coll),
				Delete: func(ctx context.Context, id uint) error {
					return client.Delete(ctx, c, coll, id)
				},
				Notifier: listquery.NewNotifier(),
				PageSize: sess.cfg.PerPage,
				Debounce: sess.cfg.DebounceDuration(),
				Logger:   sess.log.Logger,
			})
		},
	}

	cmd.Flags().UintVar(&stateID, "state", 0, "browse the cities of this state")
	return cmd
}

func lookupCollection(name string) (client.Collection[client.Records], error) {
	coll, ok := client.Lookup(name)
	if !ok {
		return coll, fmt.Errorf("unknown collection %q (see adminctl collections)", name)
	}
	return coll, nil
}

// collectionFor resolves name, switching to the nested cities endpoint when a
// state id is given.
func collectionFor(name string, stateID uint) (client.Collection[client.Records], error) {
	if stateID == 0 {
		return lookupCollection(name)
	}
	if name != client.Cities.Name {
		return client.Collection[client.Records]{}, fmt.Errorf("--state only applies to %s", client.Cities.Name)
	}
	return client.CitiesOfState(stateID).Untyped(), nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return uint(id), nil
}

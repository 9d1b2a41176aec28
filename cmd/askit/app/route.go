package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZhangYouJie-Major/AskIt/internal/router"
)

func newRouteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "route [PATH]",
		Short:   "Resolve a web console path, or list routes",
		Example: "askit route /",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := router.Default()

			if len(args) == 0 {
				tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PATH\tNAME\tVIEW\tREDIRECT\tTITLE")
				for _, route := range r.Routes() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						route.Path, route.Name, route.View, route.Redirect, route.Meta.Title)
				}
				return tw.Flush()
			}

			nav, err := r.Navigate(args[0])
			if err != nil {
				return err
			}
			if s.jsonOutput() {
				return writeJSON(s.out, map[string]string{
					"path":  nav.Path,
					"name":  nav.Route.Name,
					"view":  nav.Route.View,
					"title": nav.Title,
				})
			}
			fmt.Fprintf(s.out, "%s -> %s (%s)\n", nav.Path, nav.Route.View, nav.Title)
			return nil
		},
	}
}

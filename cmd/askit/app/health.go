package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(s *session) *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the AskIt server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if stats {
				st, err := s.client.Health.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if s.jsonOutput() {
					return writeJSON(s.out, st)
				}
				fmt.Fprintf(s.out, "users: %d\ndocuments: %d\ndepartments: %d\n", st.Users, st.Documents, st.Departments)
				return nil
			}

			h, err := s.client.Health.Check(cmd.Context())
			if err != nil {
				return err
			}
			if s.jsonOutput() {
				return writeJSON(s.out, h)
			}
			fmt.Fprintf(s.out, "%s: %s\n", h.Status, h.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "show user, document and department counts")
	return cmd
}

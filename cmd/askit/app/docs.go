package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/filewatcher"
	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/loader"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/usecases"
)

func newDocsCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Manage knowledge base documents",
	}
	cmd.AddCommand(
		newDocsListCommand(s),
		newDocsGetCommand(s),
		newDocsUploadCommand(s),
		newDocsDeleteCommand(s),
		newDocsWatchCommand(s),
		newDocsWaitCommand(s),
	)
	return cmd
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.Errorf("invalid document id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newDocsListCommand(s *session) *cobra.Command {
	var (
		skip, limit int
		allDepts    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter entities.ListFilter
			if !allDepts {
				filter.DepartmentID = entities.Some(s.cfg.DepartmentID)
			}
			if cmd.Flags().Changed("skip") {
				filter.Skip = entities.Some(skip)
			}
			if cmd.Flags().Changed("limit") {
				filter.Limit = entities.Some(limit)
			}

			resp, err := s.client.Documents.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return s.printDocuments(resp.Total, resp.Documents)
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "documents to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "documents to return")
	cmd.Flags().BoolVarP(&allDepts, "all", "A", false, "list every department")
	return cmd
}

func newDocsGetCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			doc, err := s.client.Documents.Get(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			return s.printDocument(doc)
		},
	}
}

func newDocsUploadCommand(s *session) *cobra.Command {
	var (
		wait        bool
		waitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "upload PATH...",
		Short:   "Upload files, or every supported file under a directory",
		Example: "askit docs upload -d 2 handbook.pdf ./policies",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.NewFileLoader(s.cfg.WatchExtensions)
			paths, err := l.Expand(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no files to upload")
			}

			uploader := usecases.NewUploader(l, s.client.Documents, s.cfg.DepartmentID, s.cfg.UploadConcurrency)
			results, uploadErr := uploader.UploadPaths(cmd.Context(), paths)

			var docs []entities.Document
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
					continue
				}
				doc := r.Document
				if wait {
					doc, err = usecases.WaitVectorized(cmd.Context(), s.client.Documents, doc.ID,
						usecases.WaitOptions{Timeout: waitTimeout})
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, err)
						if doc == nil {
							doc = r.Document
						}
					}
				}
				docs = append(docs, *doc)
			}

			if err := s.printDocuments(len(docs), docs); err != nil {
				return err
			}
			return uploadErr
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait until uploaded documents are vectorized")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 5*time.Minute, "maximum time to wait per document")
	return cmd
}

func newDocsDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := s.client.Documents.Delete(cmd.Context(), id); err != nil {
					return errors.WithMessagef(err, "deleting document %d", id)
				}
				fmt.Fprintf(s.out, "deleted %d\n", id)
			}
			return nil
		},
	}
}

func newDocsWatchCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Upload files as they are dropped into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := s.cfg.WatchDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return errors.New("no directory to watch: pass DIR or set watch_dir")
			}

			watcher, err := filewatcher.NewFSNotifyWatcher(s.cfg.WatchExtensions)
			if err != nil {
				return err
			}
			defer watcher.Stop()

			uploader := usecases.NewUploader(loader.NewFileLoader(s.cfg.WatchExtensions),
				s.client.Documents, s.cfg.DepartmentID, s.cfg.UploadConcurrency)
			uploader.OnResult = func(r usecases.UploadResult) {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
					return
				}
				fmt.Fprintf(s.out, "uploaded %s as %d\n", r.Path, r.Document.ID)
			}

			err = uploader.Watch(cmd.Context(), watcher, dir)
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return err
		},
	}
}

func newDocsWaitCommand(s *session) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait ID",
		Short: "Wait until a document is vectorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			doc, err := usecases.WaitVectorized(cmd.Context(), s.client.Documents, ids[0],
				usecases.WaitOptions{Timeout: timeout})
			if doc != nil {
				if perr := s.printDocument(doc); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "maximum time to wait")
	return cmd
}

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
)

func (s *session) jsonOutput() bool {
	return s.cfg.Output == "json"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *session) printAnswer(resp *entities.QueryResponse) error {
	if s.jsonOutput() {
		return writeJSON(s.out, resp)
	}

	fmt.Fprintln(s.out, resp.Answer)
	if len(resp.Sources) == 0 {
		return nil
	}
	fmt.Fprintln(s.out)
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tCHUNK\tFILENAME\tSCORE")
	for _, src := range resp.Sources {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\n", src.DocumentID, src.ChunkID, src.Filename, src.Score)
	}
	return tw.Flush()
}

func (s *session) printDocuments(total int, docs []entities.Document) error {
	if s.jsonOutput() {
		return writeJSON(s.out, entities.DocumentListResponse{Total: total, Documents: docs})
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tSTATUS\tVECTORIZED\tCHUNKS")
	for _, d := range docs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%t\t%d\n",
			d.ID, d.OriginalFilename, d.FileType, d.FileSize, d.Status, d.Vectorized, d.ChunkCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if total > len(docs) {
		fmt.Fprintf(s.out, "showing %d of %d\n", len(docs), total)
	}
	return nil
}

func (s *session) printDocument(doc *entities.Document) error {
	if s.jsonOutput() {
		return writeJSON(s.out, doc)
	}
	return s.printDocuments(1, []entities.Document{*doc})
}

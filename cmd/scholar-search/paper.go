// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-search/internal/logger"
	"github.com/pdiddy/scholar-search/internal/search"
	"github.com/pdiddy/scholar-search/pkg/types"
)

var paperCmd = &cobra.Command{
	Use:   "paper <id>",
	Short: "Fetch one paper from Semantic Scholar by ID",
	Long: `Paper looks up a single paper by its Semantic Scholar ID. DOI and arXiv
identifiers in the forms the API accepts (DOI:10.x/y, ARXIV:1706.03762) work
too.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaper,
}

func init() {
	addOutputFlags(paperCmd)
	rootCmd.AddCommand(paperCmd)
}

func runPaper(cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	log := appLog.With(
		logger.String("search_id", uuid.NewString()),
		logger.String("paper_id", id),
	)
	src := search.NewSemanticScholarSource(appConfig.Semantic, log)

	a, err := src.GetPaper(cmd.Context(), id)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("paper %s not found", id)
	}
	return emit(cmd, src.Name(), []types.Article{*a}, id, "paper_"+id)
}

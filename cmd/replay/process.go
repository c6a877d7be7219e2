package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

var (
	processBucket string
	processKey    string
	processJSON   bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Enrich one transcript and write it to both sinks",
	Long: `Loads s3://<bucket>/<key>, analyzes it and writes the enriched record to
DynamoDB and the search index. Replaying the same key overwrites the record.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processBucket, "bucket", "", "bucket holding the transcription artifact")
	processCmd.Flags().StringVar(&processKey, "key", "", "object key of the transcription artifact")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "print the enriched record as JSON")
	_ = processCmd.MarkFlagRequired("bucket")
	_ = processCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	loc := models.ObjectLocator{Bucket: processBucket, Key: processKey}

	record, err := pipeline.Processor.ProcessRecord(cmd.Context(), loc)
	if err != nil {
		return fmt.Errorf("%s stage failed for s3://%s/%s: %w", common.StageOf(err), loc.Bucket, loc.Key, err)
	}

	if processJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Processed %s\n", record.ID)
	cmd.Printf("  Sentiment:   %s (pos %.3f, neg %.3f, neu %.3f, mix %.3f)\n",
		record.Sentiment, record.Positive, record.Negative, record.Neutral, record.Mixed)
	cmd.Printf("  Key phrases: %d\n", len(record.KeyPhrases))
	cmd.Printf("  Entities:    %d\n", len(record.Entities))
	return nil
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/hooptrack/hooptrack/internal/config"
	"github.com/hooptrack/hooptrack/internal/evaluation"
	"github.com/hooptrack/hooptrack/internal/models"
	"github.com/hooptrack/hooptrack/internal/session"
)

// Scores a stored session against the hand-authored ground truth for a
// video and prints the report.
func main() {
	var videoName = flag.String("video", "", "Video file name the ground truth was authored for")
	var sessionID = flag.String("session", "", "Session ID to evaluate")
	flag.Parse()

	if *videoName == "" || *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Usage: evaluate -video <name.mp4> -session <session_id>")
		os.Exit(1)
	}

	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	sessions, err := session.NewStore(cfg.Storage.DataDir + "/sessions.jsonl")
	if err != nil {
		log.Fatal("Failed to open session store: ", err)
	}
	history, err := evaluation.NewHistory(cfg.Eval.HistoryPath)
	if err != nil {
		log.Fatal("Failed to open evaluation history: ", err)
	}

	service := evaluation.NewService(
		evaluation.NewLoader(cfg.Eval.GroundTruthDir), sessions, history)

	score, result, err := service.Run(*videoName, *sessionID)
	if err != nil {
		log.Fatal("Evaluation failed: ", err)
	}

	printReport(*videoName, *sessionID, result, score)
}

func printReport(videoName, sessionID string, result *models.EvaluationResult, score *models.Score) {
	line := "================================================================================"
	fmt.Println(line)
	fmt.Println("EVALUATION REPORT")
	fmt.Printf("Video: %s\nSession: %s\n", videoName, sessionID)
	fmt.Println(line)

	fmt.Printf("\nOVERALL SCORE: %.2f%%\n", score.OverallScore)
	fmt.Printf("\nDetection metrics:\n")
	fmt.Printf("  Precision: %.2f%%\n", score.Precision)
	fmt.Printf("  Recall:    %.2f%%\n", score.Recall)
	fmt.Printf("  F1 score:  %.2f%%\n", score.F1Score)

	fmt.Printf("\nTrue positives: %d\n", score.TruePositives)
	for _, tp := range result.TruePositives {
		fmt.Printf("  - %s: expected %.1fs, detected %.1fs (error %.2fs)\n",
			tp.Type, tp.ExpectedTime, tp.ActualTime, tp.TimeError)
	}

	fmt.Printf("\nFalse positives: %d\n", score.FalsePositives)
	for _, fp := range result.FalsePositives {
		fmt.Printf("  - %s at %.1fs (should not have been detected)\n", fp.Type, fp.Timestamp)
	}

	fmt.Printf("\nFalse negatives: %d\n", score.FalseNegatives)
	for _, fn := range result.FalseNegatives {
		fmt.Printf("  - %s at %.1fs (missed detection)\n", fn.Type, fn.ExpectedTime)
	}

	fmt.Printf("\nStats accuracy: %.2f%%\n", score.StatsAccuracy)
	for stat, value := range result.StatsCorrect {
		fmt.Printf("  - %s: %d (correct)\n", stat, value)
	}
	for stat, statErr := range result.StatsErrors {
		fmt.Printf("  - %s: expected %d, got %d\n", stat, statErr.Expected, statErr.Actual)
	}

	fmt.Printf("\nTiming accuracy: %.2f%% (avg error %.2fs)\n", score.TimingAccuracy, score.AvgTimeError)
	fmt.Println(line)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gradekit/internal/config"
	"gradekit/internal/database"
	"gradekit/internal/dto"
	"gradekit/internal/evaluator"
	"gradekit/internal/logger"
	"gradekit/internal/match"
	"gradekit/internal/repository"
	"gradekit/internal/scoring"
	"gradekit/internal/similarity"
)

// batchSubmission is one line item of the input file.
type batchSubmission struct {
	QuestionNumber int    `json:"question_number"`
	Answer         string `json:"answer"`
}

// batchResult pairs a submission with its verdict or a grading error.
type batchResult struct {
	QuestionNumber int                     `json:"question_number"`
	Answer         string                  `json:"answer"`
	Result         *dto.EvaluationResponse `json:"result,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

// Grades a file of submissions offline with the local engine. Remote grading
// is deliberately not used here: batch runs need reproducible scores.
func main() {
	inputPath := flag.String("input", "submissions.json", "path to a JSON array of submissions")
	workers := flag.Int("workers", 4, "number of concurrent graders")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return
	}
	defer logger.Sync()
	log := logger.Get()

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatal("Failed to read submissions file", zap.Error(err))
	}
	var submissions []batchSubmission
	if err := json.Unmarshal(data, &submissions); err != nil {
		log.Fatal("Failed to parse submissions file", zap.Error(err))
	}
	log.Info("Batch grading starting", zap.Int("submissions", len(submissions)))

	db, err := database.NewSQLXSqliteDB(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewQuestionDatabaseAdapter(db)

	// Embeddings are skipped on purpose: the lexical tiers are enough for
	// offline runs and keep the batch free of network dependencies.
	scorer := similarity.NewScorer(nil)
	thresholds := match.Thresholds{
		TokenOverlapMin:      cfg.Scoring.TokenOverlapMin,
		SemanticMin:          cfg.Scoring.SemanticMin,
		ForbiddenSemanticMin: cfg.Scoring.ForbiddenSemantic,
	}
	weights := scoring.Weights{
		Similarity:        cfg.Scoring.SimilarityWeight,
		Coverage:          cfg.Scoring.CoverageWeight,
		PartialCredit:     cfg.Scoring.PartialCredit,
		PenaltyPerConcept: cfg.Scoring.PenaltyPerConcept,
		PassThreshold:     cfg.Scoring.PassThreshold,
	}
	local := evaluator.NewLocalEvaluator(scorer, match.NewMatcher(scorer, thresholds), weights)

	results := make([]batchResult, len(submissions))
	var mu sync.Mutex
	questions := make(map[int]bool)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for i, sub := range submissions {
		g.Go(func() error {
			question, err := repo.GetQuestionByNumber(ctx, sub.QuestionNumber)
			if err != nil {
				return err
			}
			res := batchResult{QuestionNumber: sub.QuestionNumber, Answer: sub.Answer}
			if question == nil {
				res.Error = fmt.Sprintf("question %d not found", sub.QuestionNumber)
			} else {
				verdict, err := local.Evaluate(ctx, question, sub.Answer)
				if err != nil {
					res.Error = err.Error()
				} else {
					res.Result = dto.FromDomainResult(verdict)
				}
			}
			mu.Lock()
			results[i] = res
			questions[sub.QuestionNumber] = true
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("Batch grading aborted", zap.Error(err))
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode results", zap.Error(err))
	}
	fmt.Println(string(out))
	log.Info("Batch grading finished",
		zap.Int("submissions", len(submissions)),
		zap.Int("questions", len(questions)))
}

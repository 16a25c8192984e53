package answereval

import (
	"context"
	"fmt"
	"math"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/heuristic"
)

// Confidence of the local tiers
const (
	textSimilarityConfidence = 0.8
	examplesConfidence       = 0.6
	keywordConfidence        = 0.6
	degradedConfidence       = 0.3
)

// secondary runs tier 2: the aggregator in definition mode when configured,
// otherwise text similarity or the examples matcher. A failing aggregator
// drops to tier 3.
func (e *Evaluator) secondary(ctx context.Context, req Request, run *ladder) Result {
	run.enter(StateFallback2)
	run.tier = 2

	if req.mode() == ModeExamples {
		run.method = MethodExamplesMatch
		return e.examplesResult(req, examplesConfidence)
	}

	if e.aggregator != nil {
		assessment, err := e.aggregator.Evaluate(ctx, api.ScoreInputs{
			Answer:    req.Answer,
			Reference: req.reference(),
			Question:  req.Question,
		})
		if err == nil {
			run.method = MethodAggregate
			breakdown := assessment.Breakdown
			return Result{
				Score:           assessment.Score,
				Feedback:        assessment.Feedback,
				Similarities:    assessment.Similarities,
				MissingConcepts: assessment.MissingConcepts,
				Suggestions:     assessment.Suggestions,
				Confidence:      assessment.Confidence,
				Breakdown:       &breakdown,
			}
		}
		e.logger.Warn().Err(err).Msg("aggregator failed, falling back to keyword overlap")
		run.reason = fmt.Sprintf("%s; aggregator failed: %v", run.reason, err)
		return e.tertiary(req, run)
	}

	run.method = MethodTextSimilarity
	return textSimilarityResult(req)
}

// tertiary runs tier 3, the last resort. It always produces a result.
func (e *Evaluator) tertiary(req Request, run *ladder) Result {
	run.enter(StateFallback3)
	run.tier = 3

	if req.mode() == ModeExamples {
		run.method = MethodExamplesMatch
		return e.examplesResult(req, examplesConfidence)
	}

	run.method = MethodKeywordOverlap
	return keywordOverlapResult(req)
}

func textSimilarityResult(req Request) Result {
	similarity := heuristic.TextSimilarity(req.Answer, req.reference())
	score := api.ClampScore(int(math.Round(similarity * 100)))

	result := Result{
		Score:      score,
		Confidence: textSimilarityConfidence,
	}
	if score >= req.threshold() {
		result.Feedback = fmt.Sprintf("Great! %d%% similarity to expected definition.", score)
		result.Suggestions = []string{"Well done!"}
	} else {
		result.Feedback = fmt.Sprintf("Partial match (%d%%). Include more key concepts from the definition.", score)
		result.Suggestions = []string{"Include more key terms", "Use terminology from the definition"}
	}
	return result
}

func keywordOverlapResult(req Request) Result {
	overlap := heuristic.KeywordOverlap(req.Answer, req.reference())

	result := Result{
		Score:           overlap.Score,
		Similarities:    make([]string, 0, len(overlap.Matched)),
		MissingConcepts: make([]string, 0, len(overlap.Missing)),
		Suggestions:     []string{"Try to use more specific terminology", "Include examples if possible"},
		Confidence:      keywordConfidence,
	}
	if len(overlap.Keywords) == 0 {
		result.Confidence = degradedConfidence
	}
	for _, kw := range overlap.Matched {
		result.Similarities = append(result.Similarities, "Mentioned: "+kw)
	}
	for _, kw := range overlap.Missing {
		result.MissingConcepts = append(result.MissingConcepts, "Missing: "+kw)
	}

	if overlap.Score >= req.threshold() {
		result.Feedback = "Good answer!"
	} else {
		result.Feedback = "Try to include more key concepts."
	}
	return result
}

func (e *Evaluator) examplesResult(req Request, confidence float64) Result {
	match := heuristic.MatchExamples(req.Answer, req.examples(), e.jitter())

	result := Result{
		Score:         match.Score,
		ValidExamples: match.Matched,
		Suggestions:   []string{"Try Siri, Google Search, Netflix recommendations, Tesla Autopilot"},
		Confidence:    confidence,
	}
	if match.Penalized {
		result.Confidence = degradedConfidence
	}
	if n := len(match.Matched); n > 0 {
		result.Feedback = fmt.Sprintf("Found %d relevant AI examples. Try to provide more specific examples.", n)
		for _, ex := range match.Matched {
			result.Similarities = append(result.Similarities, fmt.Sprintf("Mentioned: %s", ex))
		}
	} else {
		result.Feedback = "Examples must be specific AI systems or applications, not generic tech brands or devices."
	}
	return result
}

// Package pipeline turns a symptom set into scored diagnoses, specialist guidance and a
// ranked list of doctors. It never fails: every dependency error degrades to a fallback.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/common/metrics"
	"doctor-ranking/internal/models"
	"doctor-ranking/internal/triage/confidence"
	"doctor-ranking/internal/triage/specialist"
	"doctor-ranking/internal/triage/symptoms"
	"doctor-ranking/pkg/registry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultSearchThreshold     = 0.1
	DefaultMinDirectoryResults = 3
	DefaultMaxDoctors          = 5

	anonymousUser = "anonymous"
)

// Oracle predicts a specialist and candidate diseases for a symptom set.
type Oracle interface {
	Predict(ctx context.Context, s models.Symptoms) (*models.Prediction, error)
}

// Directory searches the doctor directory for each specialist in order.
type Directory interface {
	SearchBySpecialists(ctx context.Context, specialists []string, location string) ([]models.Doctor, error)
}

// LocalPool serves doctors from the bundled fallback data set.
type LocalPool interface {
	BySpecialty(ctx context.Context, specialty string) ([]models.Doctor, error)
}

// RatingReader returns stored rating statistics, or nil when a doctor has none.
type RatingReader interface {
	Statistics(ctx context.Context, doctorID string) (*models.RatingStatistics, error)
}

// Personalizer re-ranks doctors against a user's stored preferences.
type Personalizer interface {
	RecommendDoctors(ctx context.Context, userID string, doctors []models.Doctor, specialty string, limit int) []models.Doctor
}

// Alerter is told about every response whose urgency is urgent.
type Alerter interface {
	NotifyUrgent(ctx context.Context, req models.RankingRequest, resp *models.RankingResponse) error
}

// Tracer opens one span per pipeline stage.
type Tracer interface {
	StartSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func())
}

type Config struct {
	SearchThreshold     float64
	MinDirectoryResults int
	MaxDoctors          int
	AlertOnUrgent       bool
}

// Deps are the collaborators of a Pipeline. Oracle is required; the rest may be nil.
type Deps struct {
	KnowledgeBase *registry.KnowledgeBase
	Oracle        Oracle
	Directory     Directory
	LocalPool     LocalPool
	Ratings       RatingReader
	Personalizer  Personalizer
	Alerter       Alerter
	Tracer        Tracer
}

type Pipeline struct {
	cfg          Config
	kb           *registry.KnowledgeBase
	oracle       Oracle
	directory    Directory
	pool         LocalPool
	ratings      RatingReader
	personalizer Personalizer
	alerter      Alerter
	tracer       Tracer
	analyzer     *confidence.Analyzer
	specialists  *specialist.Recommender
	logger       logger.Logger
	newID        func() string
}

func New(cfg Config, deps Deps, log logger.Logger) *Pipeline {
	if cfg.SearchThreshold <= 0 {
		cfg.SearchThreshold = DefaultSearchThreshold
	}
	if cfg.MinDirectoryResults <= 0 {
		cfg.MinDirectoryResults = DefaultMinDirectoryResults
	}
	if cfg.MaxDoctors <= 0 {
		cfg.MaxDoctors = DefaultMaxDoctors
	}
	kb := deps.KnowledgeBase
	if kb == nil {
		kb = registry.Default()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noopTracer{}
	}

	return &Pipeline{
		cfg:          cfg,
		kb:           kb,
		oracle:       deps.Oracle,
		directory:    deps.Directory,
		pool:         deps.LocalPool,
		ratings:      deps.Ratings,
		personalizer: deps.Personalizer,
		alerter:      deps.Alerter,
		tracer:       tracer,
		analyzer:     confidence.NewAnalyzer(kb),
		specialists:  specialist.NewRecommender(kb),
		logger:       log.WithFields(map[string]interface{}{"component": "pipeline"}),
		newID:        uuid.NewString,
	}
}

// Rank runs the whole pipeline for one request. Oracle failures and panics produce the
// canned fallback response.
func (p *Pipeline) Rank(ctx context.Context, req models.RankingRequest) (resp *models.RankingResponse) {
	requestID := p.newID()
	log := p.logger.WithFields(map[string]interface{}{"requestId": requestID})

	defer func() {
		if r := recover(); r != nil {
			log.Error("ranking panicked, serving fallback", map[string]interface{}{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
			metrics.RankingFallbacks.WithLabelValues("panic").Inc()
			resp = p.FallbackResponse(requestID)
		}
	}()

	if req.UserID == "" {
		req.UserID = anonymousUser
	}
	normalized := symptoms.Normalize(req.Symptoms)

	prediction, err := p.predict(ctx, normalized)
	if err != nil {
		log.Warn("prediction service unavailable, serving fallback", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.RankingFallbacks.WithLabelValues("oracle_error").Inc()
		return p.FallbackResponse(requestID)
	}

	resp = p.rank(ctx, log, requestID, req, normalized, prediction)
	metrics.DoctorsReturned.Observe(float64(len(resp.RecommendedDoctors)))
	p.alert(ctx, log, req, resp)

	log.Info("ranking completed", map[string]interface{}{
		"diagnoses":   len(resp.Diagnoses),
		"doctors":     len(resp.RecommendedDoctors),
		"urgency":     string(resp.SpecialistRecommendations.UrgencyLevel),
		"ruleApplied": resp.RuleOverride != "",
	})
	return resp
}

func (p *Pipeline) rank(ctx context.Context, log logger.Logger, requestID string, req models.RankingRequest, normalized models.Symptoms, prediction *models.Prediction) *models.RankingResponse {
	primary := prediction.PredictedSpecialist
	if primary == "" {
		primary = specialist.GeneralPractitioner
	}
	active := prediction.ActiveSymptoms
	if len(active) == 0 {
		active = symptoms.Selected(normalized)
	}

	_, end := p.tracer.StartSpan(ctx, "diagnose")
	raw, rule := SynthesizeDiagnoses(p.kb, primary, prediction, active)
	if rule != "" {
		metrics.RuleOverrides.WithLabelValues(rule).Inc()
	}
	mapped := make([]models.Diagnosis, len(raw))
	for i, d := range raw {
		d.Specialist = p.kb.Alias(d.Specialist)
		mapped[i] = d
	}

	diagnoses := p.analyzer.Analyze(mapped, normalized)
	flags := confidence.Flags(diagnoses, normalized)
	guidance := p.specialists.Recommend(diagnoses, normalized, flags)
	end()

	for _, d := range diagnoses {
		metrics.ConfidenceLevels.WithLabelValues(string(d.ConfidenceLevel)).Inc()
	}
	metrics.UrgencyLevels.WithLabelValues(string(guidance.UrgencyLevel)).Inc()

	searchSet := SpecialistsToSearch(diagnoses, p.cfg.SearchThreshold, primary)
	doctors := p.candidates(ctx, log, req, searchSet, p.kb.Alias(primary))
	doctors = p.mergeRatings(ctx, log, doctors)

	return &models.RankingResponse{
		RequestID:                 requestID,
		Diagnoses:                 diagnoses,
		RecommendedDoctors:        doctors,
		SpecialistRecommendations: guidance,
		PredictedSpecialist:       primary,
		SuggestedDiseases:         nonNil(prediction.SuggestedDiseases),
		ActiveSymptoms:            nonNil(active),
		MLPrediction:              primary,
		OracleDiagnoses:           prediction.Diagnoses,
		RuleOverride:              rule,
		DiseaseBasedSpecialists:   searchSet,
		Confidence: models.ConfidenceSummary{
			Score:          models.Score(summaryScore(prediction, raw)),
			ShowWarning:    flags.ShowWarning,
			WarningMessage: flags.WarningMessage,
			AnalysisMetadata: models.AnalysisMetadata{
				TotalSymptoms:               symptoms.Count(normalized),
				SymptomsWithSeverity:        symptoms.CountWithSeverity(normalized),
				HighConfidenceDiagnoses:     countLevel(diagnoses, models.ConfidenceHigh),
				ModerateConfidenceDiagnoses: countLevel(diagnoses, models.ConfidenceModerate),
				UrgencyLevel:                guidance.UrgencyLevel,
			},
		},
	}
}

func (p *Pipeline) predict(ctx context.Context, s models.Symptoms) (*models.Prediction, error) {
	if p.oracle == nil {
		return nil, fmt.Errorf("no prediction service configured")
	}
	ctx, end := p.tracer.StartSpan(ctx, "predict", attribute.Int("symptoms", len(s)))
	defer end()

	start := time.Now()
	prediction, err := p.oracle.Predict(ctx, s)
	observe("prediction", start, err)
	if err == nil && prediction == nil {
		err = fmt.Errorf("empty prediction")
	}
	return prediction, err
}

func (p *Pipeline) alert(ctx context.Context, log logger.Logger, req models.RankingRequest, resp *models.RankingResponse) {
	if !p.cfg.AlertOnUrgent || p.alerter == nil || resp.SpecialistRecommendations.UrgencyLevel != models.UrgencyUrgent {
		return
	}
	if err := p.alerter.NotifyUrgent(ctx, req, resp); err != nil {
		log.Warn("urgent-care alert failed", map[string]interface{}{"error": err.Error()})
	}
}

// summaryScore is the oracle confidence, else the first raw diagnosis confidence, else 0.6.
func summaryScore(prediction *models.Prediction, raw []models.Diagnosis) float64 {
	if c, ok := present(prediction.Confidence); ok {
		return c
	}
	if len(raw) > 0 {
		if c, ok := present(raw[0].Confidence); ok {
			return c
		}
	}
	return defaultBaseConfidence
}

func countLevel(diagnoses []models.Diagnosis, level models.ConfidenceLevel) int {
	n := 0
	for _, d := range diagnoses {
		if d.ConfidenceLevel == level {
			n++
		}
	}
	return n
}

func observe(dependency string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ExternalCallDuration.WithLabelValues(dependency, outcome).Observe(time.Since(start).Seconds())
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, _ string, _ ...attribute.KeyValue) (context.Context, func()) {
	return ctx, func() {}
}

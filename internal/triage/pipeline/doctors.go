package pipeline

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/common/metrics"
	"doctor-ranking/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

const defaultDoctorRating = 4.5

var whitespace = regexp.MustCompile(`\s+`)

// DoctorID is the rating-store key for a doctor: "{name}-{location}" with whitespace runs
// replaced by "-".
func DoctorID(d models.Doctor) string {
	return whitespace.ReplaceAllString(d.Name+"-"+d.Location, "-")
}

// candidates fetches doctors for the search set. When the directory returns too few, the
// local pool fills the list up to MaxDoctors and the result is re-ranked for the user.
// Every returned doctor carries a DoctorID so personalization and the rating store share
// one key.
func (p *Pipeline) candidates(ctx context.Context, log logger.Logger, req models.RankingRequest, searchSet []string, primary string) []models.Doctor {
	ctx, end := p.tracer.StartSpan(ctx, "candidates",
		attribute.StringSlice("specialists", searchSet),
		attribute.String("primary", primary))
	defer end()

	fromDirectory := withDoctorIDs(p.searchDirectory(ctx, log, searchSet, req.Location))
	if len(fromDirectory) >= p.cfg.MinDirectoryResults {
		return fromDirectory
	}

	metrics.RankingFallbacks.WithLabelValues("local_pool").Inc()
	local, err := p.localDoctors(ctx, primary)
	if err != nil {
		log.Warn("local doctor pool unavailable", map[string]interface{}{
			"specialty": primary,
			"error":     err.Error(),
		})
		metrics.RankingFallbacks.WithLabelValues("last_resort").Inc()
		return []models.Doctor{lastResortDoctor(primary)}
	}

	combined := append([]models.Doctor{}, fromDirectory...)
	if room := p.cfg.MaxDoctors - len(combined); room > 0 {
		if len(local) > room {
			local = local[:room]
		}
		combined = append(combined, withDoctorIDs(local)...)
	}
	if len(combined) == 0 {
		metrics.RankingFallbacks.WithLabelValues("last_resort").Inc()
		return []models.Doctor{lastResortDoctor(primary)}
	}

	if p.personalizer != nil {
		if personalized := p.personalizer.RecommendDoctors(ctx, req.UserID, combined, primary, p.cfg.MaxDoctors); len(personalized) > 0 {
			return personalized
		}
	}
	if len(combined) > p.cfg.MaxDoctors {
		combined = combined[:p.cfg.MaxDoctors]
	}
	return combined
}

func (p *Pipeline) searchDirectory(ctx context.Context, log logger.Logger, specialists []string, location string) []models.Doctor {
	if p.directory == nil {
		return nil
	}
	start := time.Now()
	doctors, err := p.directory.SearchBySpecialists(ctx, specialists, location)
	observe("directory", start, err)
	if err != nil {
		log.Warn("directory search failed, using local doctors", map[string]interface{}{
			"specialists": specialists,
			"error":       err.Error(),
		})
		return nil
	}
	return doctors
}

func (p *Pipeline) localDoctors(ctx context.Context, primary string) ([]models.Doctor, error) {
	if p.pool == nil {
		return nil, nil
	}
	doctors, err := p.pool.BySpecialty(ctx, primary)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(doctors))
	unique := make([]models.Doctor, 0, len(doctors))
	for _, d := range doctors {
		key := d.Name + "|" + d.Specialty + "|" + d.Location
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, d)
	}
	return unique, nil
}

func withDoctorIDs(doctors []models.Doctor) []models.Doctor {
	for i := range doctors {
		if doctors[i].DoctorID == "" {
			doctors[i].DoctorID = DoctorID(doctors[i])
		}
	}
	return doctors
}

// mergeRatings attaches stored rating statistics and sorts by the merged rating.
func (p *Pipeline) mergeRatings(ctx context.Context, log logger.Logger, doctors []models.Doctor) []models.Doctor {
	ctx, end := p.tracer.StartSpan(ctx, "ratings", attribute.Int("doctors", len(doctors)))
	defer end()

	out := make([]models.Doctor, len(doctors))
	for i, d := range doctors {
		if d.DoctorID == "" {
			d.DoctorID = DoctorID(d)
		}
		own := d.Rating
		if own <= 0 {
			own = defaultDoctorRating
		}

		stats := p.statistics(ctx, log, d.DoctorID)
		d.Rating = own
		d.TotalRatings, d.TotalReviews = 0, 0
		if stats != nil {
			if stats.AverageRating > 0 {
				d.Rating = stats.AverageRating
			}
			d.TotalRatings = stats.TotalRatings
			d.TotalReviews = stats.TotalReviews
		}
		out[i] = d
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

func (p *Pipeline) statistics(ctx context.Context, log logger.Logger, doctorID string) *models.RatingStatistics {
	if p.ratings == nil {
		return nil
	}
	start := time.Now()
	stats, err := p.ratings.Statistics(ctx, doctorID)
	observe("ratings", start, err)
	if err != nil {
		log.Warn("rating statistics unavailable", map[string]interface{}{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil
	}
	return stats
}

func lastResortDoctor(specialty string) models.Doctor {
	return models.Doctor{
		Name:      "Dr. " + strings.TrimSpace(specialty) + " Specialist",
		Specialty: specialty,
		Location:  "Medical Center",
		Source:    models.SourceFallback,
	}
}

package personalization

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoctors() []models.Doctor {
	return []models.Doctor{
		{ID: "d1", Name: "Dr. Ada", Specialty: "Internal Medicine, Cardiovascular Disease", Location: "Austin, TX", Rating: 4.2, Gender: "F"},
		{ID: "d2", Name: "Dr. Ben", Specialty: "Internal Medicine, Cardiovascular Disease", Location: "Dallas, TX", Rating: 4.9, Gender: "M"},
		{ID: "d3", Name: "Dr. Cy", Specialty: "Dermatology", Location: "Austin, TX", Rating: 5},
		{ID: "d4", Name: "Dr. Dee", Specialty: "internal medicine, cardiovascular disease", Location: "Austin, TX", Rating: 3.0, Gender: "F"},
	}
}

func TestSimilarity(t *testing.T) {
	p := NewUserProfile("u1")
	p.Preferences.PreferredSpecialties = []string{"Cardiology"}
	p.Preferences.DoctorAttributes = AttributePreferences{Gender: "F", Location: "Austin, TX"}
	p.Preferences.Ratings = map[string]float64{"d1": 5, "d2": 2}

	tests := []struct {
		name string
		f    Features
		want float64
	}{
		{"all signals", Features{DoctorID: "d1", Specialty: "Cardiology", Gender: "F", Location: "Austin, TX"}, 1.0},
		{"specialty only", Features{DoctorID: "x", Specialty: "Cardiology", Gender: "M"}, 0.4},
		{"low past rating ignored", Features{DoctorID: "d2", Location: "Austin, TX"}, 0.3},
		{"nothing", Features{Specialty: "Dermatology", Gender: "Unknown"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, p.Similarity(tt.f), 1e-9)
		})
	}
}

func TestSimilarity_EmptyPreferencesNeverMatch(t *testing.T) {
	p := NewUserProfile("u1")
	assert.Equal(t, 0.0, p.Similarity(Features{Gender: "", Location: ""}))
}

func TestApply_Idempotent(t *testing.T) {
	p := NewUserProfile("u1")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	p.Apply("d1", 5, "Cardiology", Features{Gender: "F", Location: "Austin, TX"}, at)
	p.Apply("d1", 5, "Cardiology", Features{Gender: "F", Location: "Austin, TX"}, at)

	assert.Equal(t, []string{"Cardiology"}, p.Preferences.PreferredSpecialties)
	assert.Len(t, p.Preferences.PastConsultations, 2)
	assert.Equal(t, 5.0, p.Preferences.Ratings["d1"])
	assert.Equal(t, "F", p.Preferences.DoctorAttributes.Gender)
}

func TestApply_LowRatingDoesNotLearn(t *testing.T) {
	p := NewUserProfile("u1")
	p.Apply("d1", 3, "Cardiology", Features{Gender: "M", Location: "Dallas"}, time.Now())

	assert.Empty(t, p.Preferences.PreferredSpecialties)
	assert.Empty(t, p.Preferences.DoctorAttributes.Gender)
	assert.Equal(t, 3.0, p.Preferences.Ratings["d1"])
}

func TestApply_LastGoodExperienceWins(t *testing.T) {
	p := NewUserProfile("u1")
	p.Apply("d1", 5, "Cardiology", Features{Gender: "F", Location: "Austin"}, time.Now())
	p.Apply("d2", 4, "Dermatology", Features{Gender: "M"}, time.Now())

	assert.Equal(t, "M", p.Preferences.DoctorAttributes.Gender)
	assert.Equal(t, "Austin", p.Preferences.DoctorAttributes.Location)
	assert.Equal(t, []string{"Cardiology", "Dermatology"}, p.Preferences.PreferredSpecialties)
}

func TestReason(t *testing.T) {
	p := NewUserProfile("u1")
	assert.Equal(t, "Recommended based on your profile", p.Reason(Features{Rating: 4}))

	p.Preferences.PreferredSpecialties = []string{"Dermatology"}
	p.Preferences.DoctorAttributes.Location = "Austin, TX"
	assert.Equal(t,
		"You've had positive experiences with Dermatology specialists, Located in your preferred area: Austin, TX, Highly rated doctor (4.8/5.0)",
		p.Reason(Features{Specialty: "Dermatology", Location: "Austin, TX", Rating: 4.8}))
}

func TestExperienceCategory(t *testing.T) {
	tests := map[string]string{
		"":                 "medium",
		"MBBS, FWACS":      "high",
		"MD, FMCS":         "high",
		"MBBS, FRCS":       "high",
		"MBBS":             "medium",
		"MD, Board Cert.":  "medium",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExperienceCategory(in), in)
	}
}

func TestExtractFeatures_Defaults(t *testing.T) {
	f := ExtractFeatures(models.Doctor{ID: "x", Specialty: "ENT"})
	assert.Equal(t, "Unknown", f.Gender)
	assert.Equal(t, "Private Practice", f.Hospital)
	assert.Equal(t, "medium", f.Experience)
	assert.Equal(t, "x", f.DoctorID)

	f = ExtractFeatures(models.Doctor{ID: "x", DoctorID: "y"})
	assert.Equal(t, "y", f.DoctorID)
}

func TestFeaturesFromDoctor_NoDisplayDefaults(t *testing.T) {
	f := FeaturesFromDoctor(models.Doctor{ID: "x", Specialty: "ENT", Location: "Austin, TX"})
	assert.Empty(t, f.Gender)
	assert.Empty(t, f.Hospital)
	assert.Equal(t, "x", f.DoctorID)
	assert.Equal(t, "Austin, TX", f.Location)
	assert.Equal(t, "medium", f.Experience)
}

func TestUnknownGenderNeverMatches(t *testing.T) {
	tests := []struct {
		name    string
		learned string
		doctor  Features
	}{
		{"placeholder learned from a rating", "", ExtractFeatures(models.Doctor{ID: "x"})},
		{"placeholder already stored", "Unknown", ExtractFeatures(models.Doctor{ID: "x"})},
		{"placeholder stored, doctor unknown", "Unknown", Features{Gender: "Unknown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUserProfile("u1")
			p.Preferences.DoctorAttributes.Gender = tt.learned
			p.Apply("d1", 5, "", ExtractFeatures(models.Doctor{ID: "d1"}), time.Now())

			assert.Equal(t, tt.learned, p.Preferences.DoctorAttributes.Gender)
			assert.Equal(t, 0.0, p.Similarity(tt.doctor))
			assert.Equal(t, "Recommended based on your profile", p.Reason(tt.doctor))
		})
	}
}

func TestRecommendDoctors_FiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	r := NewRecommender(NewMemoryStore(), logger.NewTestLogger(t))

	_, err := r.UpdatePreferences(ctx, "u1", "d4", 5, "Internal Medicine, Cardiovascular Disease", Features{Gender: "F", Location: "Austin, TX"})
	require.NoError(t, err)

	got := r.RecommendDoctors(ctx, "u1", testDoctors(), "cardiovascular", 0)

	require.Len(t, got, 3)
	for _, d := range got {
		assert.NotEqual(t, "Dermatology", d.Specialty)
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, *got[i-1].ContentScore, *got[i].ContentScore)
	}
	assert.Equal(t, "d1", got[0].ID)
	assert.InDelta(t, 0.7*0.9+0.3*4.2/5, *got[0].ContentScore, 1e-9)
	assert.Contains(t, got[0].RecommendationReason, "Matches your preferred doctor gender")
}

func TestRecommendDoctors_Limit(t *testing.T) {
	r := NewRecommender(nil, logger.NewNoOpLogger())
	got := r.RecommendDoctors(context.Background(), "anon", testDoctors(), "", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "d3", got[0].ID)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*UserProfile, error) {
	return nil, errors.New("boom")
}

func (failingStore) Update(context.Context, string, func(*UserProfile) error) (*UserProfile, error) {
	return nil, errors.New("boom")
}

func TestRecommendDoctors_StoreFailureDegrades(t *testing.T) {
	r := NewRecommender(failingStore{}, logger.NewNoOpLogger())

	got := r.RecommendDoctors(context.Background(), "u1", testDoctors(), "Dermatology", 5)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, *got[0].SimilarityScore)

	_, err := r.UpdatePreferences(context.Background(), "u1", "d1", 5, "X", Features{})
	assert.Error(t, err)
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	store := NewMemoryStore()
	r := NewRecommender(store, logger.NewNoOpLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.UpdatePreferences(ctx, "u1", "d1", 5, "Cardiology", Features{})
		}()
	}
	wg.Wait()

	p, err := r.Preferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology"}, p.Preferences.PreferredSpecialties)
	assert.Len(t, p.Preferences.PastConsultations, 50)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.Update(ctx, "u1", func(p *UserProfile) error {
		p.Preferences.PreferredSpecialties = append(p.Preferences.PreferredSpecialties, "ENT")
		return nil
	})
	require.NoError(t, err)

	p, _ := store.Get(ctx, "u1")
	p.Preferences.PreferredSpecialties[0] = "mutated"

	again, _ := store.Get(ctx, "u1")
	assert.Equal(t, "ENT", again.Preferences.PreferredSpecialties[0])
}

func TestRedisStore_RoundTripWithTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	r := NewRecommender(store, logger.NewTestLogger(t))
	ctx := context.Background()

	fresh, err := r.Preferences(ctx, "u9")
	require.NoError(t, err)
	assert.Empty(t, fresh.Preferences.PreferredSpecialties)

	_, err = r.UpdatePreferences(ctx, "u9", "d1", 4, "Neurology", Features{Location: "Austin"})
	require.NoError(t, err)
	_, err = r.UpdatePreferences(ctx, "u9", "d2", 5, "Neurology", Features{})
	require.NoError(t, err)

	p, err := r.Preferences(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, []string{"Neurology"}, p.Preferences.PreferredSpecialties)
	assert.Equal(t, "Austin", p.Preferences.DoctorAttributes.Location)
	assert.Len(t, p.Preferences.PastConsultations, 2)

	assert.True(t, mr.Exists(ProfileKeyPrefix+"u9"))
	assert.Equal(t, time.Hour, mr.TTL(ProfileKeyPrefix+"u9"))

	mr.FastForward(2 * time.Hour)
	expired, err := r.Preferences(ctx, "u9")
	require.NoError(t, err)
	assert.Empty(t, expired.Preferences.PastConsultations)
}

func TestRedisStore_GetErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, time.Hour)
	ctx := context.Background()

	mock.ExpectGet(ProfileKeyPrefix + "u1").RedisNil()
	p, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)

	mock.ExpectGet(ProfileKeyPrefix + "u2").SetErr(errors.New("connection refused"))
	_, err = store.Get(ctx, "u2")
	assert.True(t, errors.Is(err, ErrProfileStore))

	mock.ExpectGet(ProfileKeyPrefix + "u3").SetVal("{not json")
	_, err = store.Get(ctx, "u3")
	assert.True(t, errors.Is(err, ErrProfileStore))

	stored, _ := json.Marshal(&UserProfile{UserID: "u4", Preferences: Preferences{PreferredSpecialties: []string{"ENT"}}})
	mock.ExpectGet(ProfileKeyPrefix + "u4").SetVal(string(stored))
	p, err = store.Get(ctx, "u4")
	require.NoError(t, err)
	assert.Equal(t, []string{"ENT"}, p.Preferences.PreferredSpecialties)
	assert.NotNil(t, p.Preferences.Ratings)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package scoring

import (
	"testing"

	"github.com/jonathan/fitscore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendations_Ladder(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{0, "Suggest skill development before applying"},
		{59, "Explore alternative roles that better match the profile"},
		{60, "Conduct a technical assessment"},
		{79, "Verify references before proceeding"},
		{80, "Schedule an interview immediately"},
		{100, "Fast-track the candidate through the hiring process"},
	}

	for _, tt := range tests {
		recs := Recommendations(tt.overall, nil)
		assert.Len(t, recs, 2)
		assert.Contains(t, recs, tt.want, "overall=%d", tt.overall)
	}
}

func TestRecommendations_SkillGaps(t *testing.T) {
	recs := Recommendations(70, []string{"Docker", "Kubernetes"})
	require.Len(t, recs, 3)
	assert.Equal(t, "Recommend targeted training in: Docker, Kubernetes", recs[2])
}

func TestRedFlags_NoneIsEmptyNotNil(t *testing.T) {
	c := &types.EntityProfile{Country: "DE", ExperienceLevel: types.ExperienceAdvanced}
	o := &types.EntityProfile{Country: "DE", ExperienceLevel: types.ExperienceAdvanced}

	flags := RedFlags(c, o)
	assert.NotNil(t, flags)
	assert.Empty(t, flags)
}

func TestRedFlags_IndependentChecks(t *testing.T) {
	c := &types.EntityProfile{
		Country:         "DE",
		ExperienceLevel: types.ExperienceBeginner,
		Compensation:    types.Compensation{Amount: 100000, Currency: "EUR"},
	}
	o := &types.EntityProfile{
		Country:         "FR",
		ExperienceLevel: types.ExperienceAdvanced,
		Compensation:    types.Compensation{Amount: 60000, Currency: "EUR"},
	}

	flags := RedFlags(c, o)
	assert.ElementsMatch(t, []string{RedFlagCompensation, RedFlagRelocation, RedFlagExperience}, flags)
}

func TestRedFlags_WithinTolerance(t *testing.T) {
	c := &types.EntityProfile{
		Country:           "DE",
		WillingToRelocate: true,
		ExperienceLevel:   types.ExperienceAdvanced,
		Compensation:      types.Compensation{Amount: 90000},
	}
	o := &types.EntityProfile{
		Country:         "FR",
		ExperienceLevel: types.ExperienceAdvanced,
		Compensation:    types.Compensation{Amount: 60000},
	}

	assert.Empty(t, RedFlags(c, o))
}

func TestSkillGaps(t *testing.T) {
	c := &types.EntityProfile{Skills: []string{"go", "PostgreSQL"}}
	o := &types.EntityProfile{Skills: []string{"Go", "Kubernetes", "Docker", "kubernetes", " "}}

	assert.Equal(t, []string{"Docker", "Kubernetes"}, SkillGaps(c, o))
	assert.Empty(t, SkillGaps(c, &types.EntityProfile{}))
}

package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/lungstat-cli/internal/cohort"
)

func TestAgeBins(t *testing.T) {
	bins := AgeBins()
	require.Len(t, bins, 25)
	assert.Equal(t, AgeBin{Lower: 40, Upper: 42}, bins[0])
	assert.Equal(t, AgeBin{Lower: 86, Upper: 88}, bins[23])
	assert.Equal(t, AgeBin{Lower: 88, Upper: 100}, bins[24])

	cases := map[float64]int{39.9: -1, 40: 0, 41.99: 0, 42: 1, 87.5: 23, 88: 24, 99.9: 24, 100: -1}
	for age, want := range cases {
		assert.Equal(t, want, binFor(bins, age), "age %v", age)
	}
	assert.Equal(t, -1, binFor(bins, math.NaN()))
}

func TestComputeBandsLinearTrend(t *testing.T) {
	var subjects []cohort.Subject
	// value = 5 - 0.02*age + offset, offsets spread evenly within each bin
	for age := 40.0; age < 88; age += 2 {
		for k := 0; k < 11; k++ {
			v := 5 - 0.02*age + float64(k)*0.1
			subjects = append(subjects, cohort.Subject{Age: age + 0.5, Values: map[string]float64{"fev1": v}})
		}
	}
	bands, nbins := ComputeBands(subjects, "fev1")
	assert.Equal(t, 24, nbins)
	require.Len(t, bands, len(PercentileLevels))
	for i, b := range bands {
		assert.InDelta(t, -0.02, b.Slope, 1e-6, "level %v", b.Level)
		// type-7 quantile of 0..1 in steps of 0.1 is exactly the level
		assert.InDelta(t, 5+PercentileLevels[i], b.Intercept, 1e-6)
	}
	assert.Less(t, bands[0].At(60), bands[4].At(60))
}

func TestComputeBandsNeedsTwoBins(t *testing.T) {
	subjects := []cohort.Subject{
		{Age: 50, Values: map[string]float64{"fev1": 3}},
		{Age: 51, Values: map[string]float64{"fev1": 3.2}},
		{Age: 30, Values: map[string]float64{"fev1": 4}},
	}
	bands, nbins := ComputeBands(subjects, "fev1")
	assert.Nil(t, bands)
	assert.Equal(t, 1, nbins)
}

func TestClipLine(t *testing.T) {
	xs, ys, ok := clipLine(Band{Intercept: 0, Slope: 1}, 45, 85, 50, 80)
	require.True(t, ok)
	assert.Equal(t, []float64{50, 80}, xs)
	assert.Equal(t, []float64{50, 80}, ys)

	_, _, ok = clipLine(Band{Intercept: 10}, 45, 85, 0, 5)
	assert.False(t, ok)

	xs, _, ok = clipLine(Band{Intercept: 3}, 45, 85, 0, 5)
	require.True(t, ok)
	assert.Equal(t, []float64{45, 85}, xs)
}

func TestScottBandwidth(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	// sample sd = sqrt(2.5)
	assert.InDelta(t, math.Sqrt(2.5)*math.Pow(5, -0.2), ScottBandwidth(vals), 1e-12)
}

func TestEstimateFlat(t *testing.T) {
	d := estimate([]float64{2, 2, 2})
	assert.True(t, d.flat)
	assert.Equal(t, []float64{2}, d.ys)

	d = estimate([]float64{1, 2, 2, 3, 4})
	assert.False(t, d.flat)
	require.Len(t, d.ys, violinPoints)
	assert.Less(t, d.ys[0], 1.0)
	assert.Greater(t, d.ys[violinPoints-1], 4.0)
	assert.Greater(t, d.at(2), d.at(6))
}

func TestTitleAndFormat(t *testing.T) {
	assert.Equal(t, "Fev1 Pred", Title("fev1_pred"))
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	f, err = ParseFormat(" Pdf ")
	require.NoError(t, err)
	assert.Equal(t, PDF, f)
	_, err = ParseFormat("jpeg")
	assert.Error(t, err)
}

func renderFixture() *cohort.Table {
	tab := &cohort.Table{}
	statuses := []cohort.SmokingStatus{cohort.ExSmoker, cohort.NeverSmoker, cohort.CurrentSmoker}
	for i := 0; i < 120; i++ {
		st := statuses[i%3]
		sex := "Male"
		if i%2 == 1 {
			sex = "Female"
		}
		age := 42 + float64(i%40)
		v := 4.5 - 0.03*age + float64(i%7)*0.1
		tab.Subjects = append(tab.Subjects, cohort.Subject{
			Sex: sex, Smoking: st, Age: age,
			Values: map[string]float64{"fev1": v},
		})
	}
	return tab
}

func TestViolinWritesOneFilePerParameter(t *testing.T) {
	dir := t.TempDir()
	th := DefaultTheme().WithSize(640, 480, 72)
	paths, err := Violin(renderFixture(), ViolinOptions{
		OutDir:    dir,
		Params:    []string{"fev1", "missing"},
		SexLabels: []string{"Male", "Female"},
		Format:    SVG,
		Theme:     th,
	})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "fev1.svg")}, paths)
	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
	assert.Contains(t, string(b), "Ex Smoker")
}

func TestViolinWritesPDF(t *testing.T) {
	dir := t.TempDir()
	paths, err := Violin(renderFixture(), ViolinOptions{
		OutDir:    dir,
		Params:    []string{"fev1"},
		SexLabels: []string{"Male", "Female"},
		Format:    PDF,
		Theme:     DefaultTheme().WithSize(640, 480, 72),
	})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "fev1.pdf")}, paths)
	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
	// 640x480 px at 72 DPI is a 640x480 pt page.
	assert.Contains(t, string(b), "640.00 480.00")
}

func TestViolinNeedsTwoSexes(t *testing.T) {
	_, err := Violin(renderFixture(), ViolinOptions{OutDir: t.TempDir(), Params: []string{"fev1"}, SexLabels: []string{"Male"}})
	assert.Error(t, err)
}

func TestPercentileBandsWritesCharts(t *testing.T) {
	dir := t.TempDir()
	paths, err := PercentileBands(renderFixture(), PercentileOptions{
		OutDir:    dir,
		Params:    []string{"fev1"},
		SexLabels: []string{"Male", "Female"},
		Theme:     DefaultTheme().WithSize(640, 480, 72),
	})
	require.NoError(t, err)
	require.Len(t, paths, 6)
	assert.Equal(t, filepath.Join(dir, "percentile", "fev1_Male_never_smoker.png"), paths[0])
	for _, p := range paths {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, st.Size(), int64(0))
	}
}

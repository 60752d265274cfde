package analyze

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/engine"
)

func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Advisor.Locale = "en"
	settings.Analysis.UpwellingDefault = conf.DefaultUpwellingIndex
	settings.Ocean.Fallback = conf.OceanFallback{SST: 16, Source: "local cache", Date: "2026-02-21"}
	return settings
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := Command(testSettings())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeOfflineDemoJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--demo", "juvenile-octopus", "--date", "2026-03-12", "--sst", "17.9", "--offline", "--json")
	require.NoError(t, err)

	var report analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "poulpe", report.Species.Code)
	assert.Equal(t, 80, report.Prediction.RiskScore)
	assert.Equal(t, engine.UrgencyImmediate, report.Prediction.Urgency)
	assert.Equal(t, analysis.SourceManual, report.Ocean.Source)
}

func TestAnalyzeOfflineText(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--species", "courbine", "--size", "72", "--weight", "5200", "--count", "15",
		"--zone", "Port Dakhla", "--sst", "17", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "no rest needed")
	assert.Contains(t, out, "zone Port Dakhla")
}

func TestAnalyzeFlagOverridesDemo(t *testing.T) {
	t.Parallel()

	f := &flags{}
	cmd := Command(testSettings())
	require.NoError(t, cmd.Flags().Parse([]string{"--demo", "small-sardine", "--count", "40", "--upwelling", "0"}))
	f.demo, _ = cmd.Flags().GetString("demo")
	f.count, _ = cmd.Flags().GetInt("count")
	f.upwelling, _ = cmd.Flags().GetFloat64("upwelling")

	req, err := f.request(cmd)
	require.NoError(t, err)
	assert.Equal(t, "sardine", req.Sample.SpeciesCode)
	assert.Equal(t, 40, req.Sample.Count)
	require.NotNil(t, req.Upwelling)
	assert.Zero(t, *req.Upwelling)
	assert.Nil(t, req.SST)
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown demo", []string{"--demo", "whale", "--offline", "--sst", "17"}},
		{"bad date", []string{"--demo", "small-sardine", "--date", "03/12/2026", "--offline", "--sst", "17"}},
		{"offline without sst", []string{"--demo", "small-sardine", "--offline"}},
		{"count below minimum", []string{"--species", "poulpe", "--size", "9", "--weight", "300", "--count", "3", "--offline", "--sst", "17"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, tt.args...)
			require.Error(t, err)
		})
	}
}

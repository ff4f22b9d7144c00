package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
	"github.com/xinkaiwang/rtsplanner/services/planner/planjson"
)

const problemYaml = `name: early-rush
risk_attitude: neutral
my_units: {heavy: 1, light: 2, ranged: 0}
resources: 8
nb_barracks: 2
samples:
  - {heavy: 1, light: 2, ranged: 1}
budget_ms: 5000
options:
  seed: 17
  iteration_limit: 2000
`

func writeProblem(t *testing.T, name string, doc string) string {
	path := filepath.Join(t.TempDir(), name)
	assert.Nil(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	klogging.SetDefaultLogger(klogging.NewNullLogger())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunJsonOutput(t *testing.T) {
	path := writeProblem(t, "problem.yaml", problemYaml)
	out, err := runCmd(t, "--problem", path, "--output", "json")
	assert.Nil(t, err)
	obj, err := planjson.PlanResultJsonFromJson(out)
	assert.Nil(t, err)
	assert.True(t, obj.Feasible)
	assert.Equal(t, 12, len(obj.Values))
	// stock: 3*heavy + 2*light + 2*ranged <= 8
	cost := 3*obj.Produce["heavy"] + 2*obj.Produce["light"] + 2*obj.Produce["ranged"]
	assert.True(t, cost <= 8)
	assert.Equal(t, 1, len(obj.Runs))
	assert.Equal(t, int64(17), obj.Runs[0].Seed)
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	path := writeProblem(t, "problem.yaml", problemYaml)
	first, err := runCmd(t, "--problem", path, "--output", "json", "--seed", "3")
	assert.Nil(t, err)
	second, err := runCmd(t, "--problem", path, "--output", "json", "--seed", "3")
	assert.Nil(t, err)
	a, _ := planjson.PlanResultJsonFromJson(first)
	b, _ := planjson.PlanResultJsonFromJson(second)
	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, int64(3), a.Runs[0].Seed)
}

func TestRunTextOutputAndMetrics(t *testing.T) {
	path := writeProblem(t, "problem.yaml", problemYaml)
	out, err := runCmd(t, "--problem", path, "--dump-metrics")
	assert.Nil(t, err)
	assert.True(t, strings.Contains(out, "produce: heavy="), out)
	assert.True(t, strings.Contains(out, "feasible=true"), out)
	assert.True(t, strings.Contains(out, "solver_local_moves"), out)
	assert.True(t, strings.Contains(out, "process_goroutines"), out)
}

func TestRunOptionsFileOverridesProblem(t *testing.T) {
	path := writeProblem(t, "problem.yaml", problemYaml)
	optionsPath := writeProblem(t, "options.json", `{"seed": 23, "iteration_limit": 100}`)
	out, err := runCmd(t, "--problem", path, "--options", optionsPath, "--output", "json")
	assert.Nil(t, err)
	obj, err := planjson.PlanResultJsonFromJson(out)
	assert.Nil(t, err)
	assert.Equal(t, int64(23), obj.Runs[0].Seed)
	assert.True(t, obj.Runs[0].Moves <= 100)

	// flags win over the options file
	out, err = runCmd(t, "--problem", path, "--options", optionsPath, "--output", "json", "--seed", "5")
	assert.Nil(t, err)
	obj, err = planjson.PlanResultJsonFromJson(out)
	assert.Nil(t, err)
	assert.Equal(t, int64(5), obj.Runs[0].Seed)
}

func TestRunTagsLogsWithPlanId(t *testing.T) {
	path := writeProblem(t, "problem.yaml", problemYaml)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--problem", path})
	ml := klogging.NewMemoryLogger(klogging.DebugLevel)
	klogging.SetDefaultLogger(ml)
	defer klogging.SetDefaultLogger(klogging.NewNullLogger())
	assert.Nil(t, cmd.ExecuteContext(context.Background()))

	loaded := ml.FindByType("PlanConfigLoaded")
	assert.Equal(t, 1, len(loaded))
	planId, ok := loaded[0].GetDetail("planId")
	assert.True(t, ok)
	assert.Equal(t, 8, len(planId.(string)))
	// the solve runs under the same plan
	done := ml.FindByType("SolveDone")
	assert.Equal(t, 1, len(done))
	again, _ := done[0].GetDetail("planId")
	assert.Equal(t, planId, again)
}

func TestRunErrors(t *testing.T) {
	_, err := runCmd(t)
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))

	path := writeProblem(t, "problem.yaml", problemYaml)
	_, err = runCmd(t, "--problem", path, "--output", "xml")
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))

	_, err = runCmd(t, "--problem", path, "--risk-attitude", "reckless")
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))

	bad := writeProblem(t, "bad.json", `{"resources": -3}`)
	_, err = runCmd(t, "--problem", bad)
	assert.True(t, kerror.HasErrorCode(err, kerror.EC_INVALID_PARAMETER))
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "--version")
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(out, "rtsplan dev"))
}

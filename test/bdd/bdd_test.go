package bdd

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/fleetgrid/fleetd/test/bdd/steps"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func initializeScenario(sc *godog.ScenarioContext) {
	steps.InitializeOrphanCleanupScenario(sc)
	steps.InitializeGracefulShutdownScenario(sc)
}

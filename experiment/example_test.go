package experiment_test

import (
	"context"
	"log"
	"os"

	"github.com/YuminosukeSato/featsel/experiment"
)

func ExampleRun() {
	cfg := experiment.DefaultConfig()
	cfg.Selectors = []string{experiment.StepRFE, experiment.StepLasso}

	report, err := experiment.Run(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := report.WriteText(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

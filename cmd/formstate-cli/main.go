// Command formstate-cli fills a form interactively from a declarative
// definition: it prompts for every seeded field, runs the definition's
// validation rules through the form state engine, and prints the submitted
// values as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/notify"
	"github.com/goliatone/go-formstate/pkg/pathutil"
)

func main() {
	var (
		definitionFlag = flag.String("definition", "", "Path to a form definition (.json/.yaml/.yml)")
		outputFlag     = flag.String("output", "", "Optional file path for the submitted values (stdout when empty)")
		timeoutFlag    = flag.Duration("timeout", 30*time.Second, "Submission timeout")
		verboseFlag    = flag.Bool("verbose", false, "Log every state notification (stderr)")
	)
	flag.Parse()

	if *definitionFlag == "" {
		log.Fatal("formstate-cli: -definition is required")
	}

	def, err := definition.LoadFile(*definitionFlag)
	if err != nil {
		log.Fatalf("formstate-cli: %v", err)
	}

	cfg, err := def.Config(func(_ context.Context, values map[string]any, _ engine.SubmitBag) (any, error) {
		return values, nil
	})
	if err != nil {
		log.Fatalf("formstate-cli: %v", err)
	}

	outcome := make(chan error, 1)
	cfg.OnSuccess = func(result any, _ engine.SuccessBag) {
		outcome <- emit(result, *outputFlag)
	}
	cfg.OnError = func(err error, bag engine.FailureBag) {
		bag.SetFormError(err.Error())
		outcome <- err
	}

	form, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("formstate-cli: %v", err)
	}
	defer form.Close()

	if *verboseFlag {
		form.Subscribe(notify.PathAll, func() {
			state := form.Snapshot()
			log.Printf("state: dirty=%v submitting=%v errors=%d",
				state.Dirty, state.Submitting, pathutil.Leaves(state.Errors))
		})
	}

	paths := seededPaths(def)
	if len(paths) == 0 {
		log.Fatalf("formstate-cli: definition %q seeds no fields", def.ID)
	}

	for _, path := range paths {
		if err := promptField(form, def, path); err != nil {
			log.Fatalf("formstate-cli: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	form.Submit(ctx)

	if form.Submitting() {
		log.Fatal("formstate-cli: submission did not settle")
	}
	state := form.Snapshot()
	if pathutil.Leaves(state.Errors) > 0 {
		for path := range pathutil.Keys(state.Errors) {
			message, _ := pathutil.Get(state.Errors, path)
			fmt.Fprintf(os.Stderr, "  %s: %v\n", path, message)
		}
		os.Exit(1)
	}

	if err := <-outcome; err != nil {
		log.Fatalf("formstate-cli: submit failed: %v", err)
	}
}

func seededPaths(def definition.Definition) []string {
	var out []string
	for path := range pathutil.Keys(def.InitialValues) {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func promptField(form *engine.Form, def definition.Definition, path string) error {
	seed := ""
	if current, ok := form.Value(path); ok && current != nil {
		seed = fmt.Sprint(current)
	}

	var answer string
	prompt := &survey.Input{
		Message: path,
		Default: seed,
		Help:    def.Hints[path],
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return fmt.Errorf("prompt %s: %w", path, err)
	}

	form.SetFieldValue(path, answer)
	form.SetFieldTouched(path, true)

	if message := form.FieldError(path); message != "" {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", path, message)
	}
	return nil
}

func emit(result any, output string) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if output == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(output, payload, 0o644)
}

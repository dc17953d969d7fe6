package validator_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/paulhiggs/dvb-i-tools-sub001/classification"
	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/language"
	"github.com/paulhiggs/dvb-i-tools-sub001/validator"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}

// scenarioState holds per-scenario state for step definitions.
type scenarioState struct {
	config validator.Config
	sink   *diagnostics.Sink
}

func initializeScenario(ctx *godog.ScenarioContext) {
	s := &scenarioState{config: validator.Config{Schemes: map[string]*classification.Scheme{}}}

	ctx.Step(`^the profile$`, func(doc *godog.DocString) error {
		p, err := validator.ParseProfile([]byte(doc.Content))
		s.config.Profile = p
		return err
	})
	ctx.Step(`^the profile "([^"]*)"$`, func(loc string) error {
		p, err := validator.LoadProfile(context.Background(), nil, loc)
		s.config.Profile = p
		return err
	})
	ctx.Step(`^the language registry "([^"]*)"$`, func(path string) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		s.config.Languages, err = language.Parse(f)
		return err
	})
	ctx.Step(`^the classification scheme "([^"]*)" with leaf terms$`, func(name string, table *godog.Table) error {
		var terms []classification.Term
		for _, row := range table.Rows {
			terms = append(terms, classification.Term{URI: row.Cells[0].Value, Leaf: true})
		}
		s.config.Schemes[name] = classification.New(classification.Options{}, terms...)
		return nil
	})
	ctx.Step(`^strict mode$`, func() error {
		s.config.Strict = true
		return nil
	})

	ctx.Step(`^validating the document$`, func(doc *godog.DocString) error {
		return s.validate(doc.Content)
	})
	ctx.Step(`^validating "([^"]*)"$`, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return s.validate(string(data))
	})

	ctx.Step(`^(error|warning|info) (\S+) is reported on line (\d+)$`, s.reportedOnLine)
	ctx.Step(`^the message of (\S+) contains "([^"]*)"$`, s.messageContains)
	ctx.Step(`^(\d+) findings? (?:is|are) reported$`, func(n int) error {
		if got := len(s.sink.All()); got != n {
			return fmt.Errorf("expected %d findings, got %d: %v", n, got, s.describe())
		}
		return nil
	})
	ctx.Step(`^(\d+) warnings? (?:is|are) reported$`, func(n int) error {
		if got := len(s.sink.Warnings()); got != n {
			return fmt.Errorf("expected %d warnings, got %d: %v", n, got, s.describe())
		}
		return nil
	})
}

func (s *scenarioState) validate(xml string) error {
	if s.config.SemanticRules == nil && s.config.Profile != nil && s.config.Profile.Name == "" {
		// inline profiles exercise a single layer
		s.config.SemanticRules = []validator.SemanticRule{}
	}
	sink, _, err := validator.New(s.config).ValidateString(context.Background(), strings.TrimSpace(xml))
	s.sink = sink
	return err
}

func (s *scenarioState) reportedOnLine(severity, code string, line int) error {
	sev := diagnostics.Severity(severity)
	for _, f := range s.sink.Findings(sev) {
		if f.Code != code {
			continue
		}
		for _, l := range f.Lines() {
			if l == line {
				return nil
			}
		}
		return fmt.Errorf("%s %s reported on lines %v, expected line %d", severity, code, f.Lines(), line)
	}
	return fmt.Errorf("%s %s not reported: %v", severity, code, s.describe())
}

func (s *scenarioState) messageContains(code, text string) error {
	for _, f := range s.sink.All() {
		if f.Code == code {
			if strings.Contains(f.Message, text) {
				return nil
			}
			return fmt.Errorf("message %q does not contain %q", f.Message, text)
		}
	}
	return fmt.Errorf("%s not reported", code)
}

func (s *scenarioState) describe() []string {
	var out []string
	for _, f := range s.sink.All() {
		out = append(out, f.String())
	}
	return out
}

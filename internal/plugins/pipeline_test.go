// SPDX-License-Identifier: MIT
package plugins

import (
	"testing"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/executor"
)

type rejectPlugin struct {
	*Base
}

func newRejectPlugin(id string) *rejectPlugin {
	return &rejectPlugin{Base: NewBase(id, id, "", true)}
}

func (p *rejectPlugin) OnResult(q *executor.SearchQuery, r *engine.Result) bool { return false }

type modifyPlugin struct {
	*Base
	newQuery string
}

func (p *modifyPlugin) PreSearch(q *executor.SearchQuery) PreSearchOutcome {
	return PreSearchOutcome{Action: PreModifyQuery, NewQuery: p.newQuery}
}

type answerPlugin struct {
	*Base
	text string
}

func (p *answerPlugin) PreSearch(q *executor.SearchQuery) PreSearchOutcome {
	return PreSearchOutcome{Action: PreAnswer, Answer: &engine.Answer{Text: p.text, Engine: p.Info().ID}}
}

type skipPlugin struct {
	*Base
}

func (p *skipPlugin) PreSearch(q *executor.SearchQuery) PreSearchOutcome {
	return PreSearchOutcome{Action: PreSkip}
}

func TestPipeline_DefaultsRegistersAllFour(t *testing.T) {
	p := NewDefaultPipeline()
	list := p.List()
	if len(list) != 4 {
		t.Fatalf("expected 4 default plugins, got %d", len(list))
	}
	for _, id := range []string{"calculator", "hash_plugin", "tracker_url_remover", "unit_converter"} {
		if !p.IsEnabled(id) {
			t.Errorf("expected %q enabled by default", id)
		}
	}
}

func TestPipeline_EnableDisable(t *testing.T) {
	p := NewDefaultPipeline()
	p.Disable("calculator")
	if p.IsEnabled("calculator") {
		t.Fatal("expected calculator disabled")
	}
	p.Enable("calculator")
	if !p.IsEnabled("calculator") {
		t.Fatal("expected calculator re-enabled")
	}
}

func TestPipeline_PreSearchContinueThenAnswer(t *testing.T) {
	p := NewPipeline()
	p.Register(&modifyPlugin{Base: NewBase("mod", "mod", "", true), newQuery: "rewritten"})
	p.Register(&answerPlugin{Base: NewBase("ans", "ans", "", true), text: "the answer"})

	q := &executor.SearchQuery{CleanQuery: "original"}
	answer, skip := p.PreSearch(q)
	if !skip {
		t.Fatal("expected skip=true")
	}
	if answer == nil || answer.Text != "the answer" {
		t.Fatalf("got %v", answer)
	}
	if q.CleanQuery != "rewritten" {
		t.Fatalf("expected query rewritten before the answer plugin ran, got %q", q.CleanQuery)
	}
}

func TestPipeline_PreSearchSkipNoAnswer(t *testing.T) {
	p := NewPipeline()
	p.Register(&skipPlugin{Base: NewBase("skip", "skip", "", true)})
	p.Register(&answerPlugin{Base: NewBase("ans", "ans", "", true), text: "never reached"})

	answer, skip := p.PreSearch(&executor.SearchQuery{CleanQuery: "q"})
	if !skip {
		t.Fatal("expected skip=true")
	}
	if answer != nil {
		t.Fatalf("expected no answer, got %v", answer)
	}
}

func TestPipeline_PreSearchAllContinue(t *testing.T) {
	p := NewDefaultPipeline()
	answer, skip := p.PreSearch(&executor.SearchQuery{CleanQuery: "golang tutorials"})
	if skip || answer != nil {
		t.Fatalf("expected no short-circuit, got answer=%v skip=%v", answer, skip)
	}
}

func TestPipeline_OnResultANDSemantics(t *testing.T) {
	p := NewPipeline()
	p.Register(newRejectPlugin("rejector"))

	r := &engine.Result{URL: "https://example.com"}
	if p.OnResult(nil, r) {
		t.Fatal("expected the rejecting plugin to filter the result out")
	}
}

func TestPipeline_OnResultDisabledPluginIgnored(t *testing.T) {
	p := NewPipeline()
	rp := newRejectPlugin("rejector")
	p.Register(rp)
	p.Disable("rejector")

	r := &engine.Result{URL: "https://example.com"}
	if !p.OnResult(nil, r) {
		t.Fatal("expected a disabled plugin to have no effect")
	}
}

func TestPipeline_TryAnswerCalculator(t *testing.T) {
	p := NewDefaultPipeline()
	answer, ok := p.TryAnswer("=2+2")
	if !ok {
		t.Fatal("expected an instant answer")
	}
	if answer.Text != "2+2 = 4" {
		t.Fatalf("got %q", answer.Text)
	}
}

func TestPipeline_TryAnswerNoMatch(t *testing.T) {
	p := NewDefaultPipeline()
	if _, ok := p.TryAnswer("golang tutorials"); ok {
		t.Fatal("expected no instant answer for an ordinary query")
	}
}

func TestPipeline_TryAnswerDisabledPluginSkipped(t *testing.T) {
	p := NewDefaultPipeline()
	p.Disable("calculator")
	if _, ok := p.TryAnswer("=2+2"); ok {
		t.Fatal("expected disabled calculator to be skipped")
	}
}

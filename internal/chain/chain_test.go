package chain

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/boshu2/jackknife/internal/dispatch"
)

func TestIsChain(t *testing.T) {
	if IsChain("giftomp4") {
		t.Error("single tool name is not a chain")
	}
	if !IsChain("t1,t2") {
		t.Error("comma-separated names are a chain")
	}
}

func TestParse_SimpleChain(t *testing.T) {
	got := Parse("t1,t2,t3")
	want := []dispatch.Invocation{{Name: "t1"}, {Name: "t2"}, {Name: "t3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

func TestParse_BracketedArgs(t *testing.T) {
	got := Parse("t1[--fast -n 3],t2[a b]")
	want := []dispatch.Invocation{
		{Name: "t1", Args: []string{"--fast", "-n", "3"}},
		{Name: "t2", Args: []string{"a", "b"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

func TestParse_QuotedArgsKeepSpaces(t *testing.T) {
	got := Parse(`tool1[--name "John Doe"],tool2`)

	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Name != "tool1" {
		t.Errorf("first name = %q, want tool1", got[0].Name)
	}
	wantArgs := []string{"--name", "John Doe"}
	if !reflect.DeepEqual(got[0].Args, wantArgs) {
		t.Errorf("first args = %v, want %v", got[0].Args, wantArgs)
	}
	if got[1].Name != "tool2" || len(got[1].Args) != 0 {
		t.Errorf("second entry = %+v, want tool2 with no args", got[1])
	}
}

func TestParse_CommaInsideBrackets(t *testing.T) {
	got := Parse("t1[a,b],t2")
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Name != "t1" {
		t.Errorf("first name = %q, want t1", got[0].Name)
	}
	if got[1].Name != "t2" {
		t.Errorf("second name = %q, want t2", got[1].Name)
	}
}

func TestParse_UnterminatedQuoteFallsBack(t *testing.T) {
	got := Parse(`t1[--name "John]`)
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	// Naive whitespace fallback keeps the raw tokens.
	want := []string{"--name", `"John`}
	if !reflect.DeepEqual(got[0].Args, want) {
		t.Errorf("fallback args = %v, want %v", got[0].Args, want)
	}
}

func TestParse_TrimsWhitespaceAndSkipsEmpties(t *testing.T) {
	got := Parse(" t1 , t2 ,")
	want := []dispatch.Invocation{{Name: "t1"}, {Name: "t2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

// scriptedRunner returns canned codes per tool name and records run order.
type scriptedRunner struct {
	codes map[string]int
	errs  map[string]error
	ran   []string
}

func (r *scriptedRunner) Run(ctx context.Context, inv dispatch.Invocation) (dispatch.Result, error) {
	r.ran = append(r.ran, inv.Name)
	return dispatch.Result{Code: r.codes[inv.Name], Path: dispatch.PathSubprocess}, r.errs[inv.Name]
}

func TestExecute_StopsOnFirstError(t *testing.T) {
	runner := &scriptedRunner{codes: map[string]int{"t1": 5, "t2": 0, "t3": 0}}
	e := &Executor{Runner: runner, ContinueOnError: false, Log: zerolog.Nop()}

	code := e.Execute(context.Background(), Parse("t1,t2,t3"))

	if code != 5 {
		t.Errorf("overall code = %d, want 5", code)
	}
	if !reflect.DeepEqual(runner.ran, []string{"t1"}) {
		t.Errorf("ran = %v, want [t1] only", runner.ran)
	}
}

func TestExecute_ContinueOnErrorRunsAllAndKeepsLastNonZero(t *testing.T) {
	runner := &scriptedRunner{codes: map[string]int{"t1": 5, "t2": 0, "t3": 9}}
	e := &Executor{Runner: runner, ContinueOnError: true, Log: zerolog.Nop()}

	code := e.Execute(context.Background(), Parse("t1,t2,t3"))

	if code != 9 {
		t.Errorf("overall code = %d, want 9 (last non-zero, not first)", code)
	}
	if !reflect.DeepEqual(runner.ran, []string{"t1", "t2", "t3"}) {
		t.Errorf("ran = %v, want all three in order", runner.ran)
	}
}

func TestExecute_AllSucceed(t *testing.T) {
	runner := &scriptedRunner{codes: map[string]int{}}
	e := &Executor{Runner: runner, Log: zerolog.Nop()}

	if code := e.Execute(context.Background(), Parse("t1,t2")); code != 0 {
		t.Errorf("overall code = %d, want 0", code)
	}
}

func TestExecute_RunnerErrorWithoutCodeBecomesFailure(t *testing.T) {
	runner := &scriptedRunner{
		codes: map[string]int{},
		errs:  map[string]error{"t1": errors.New("tool not found")},
	}
	e := &Executor{Runner: runner, Log: zerolog.Nop()}

	if code := e.Execute(context.Background(), Parse("t1,t2")); code != dispatch.ExitFailure {
		t.Errorf("overall code = %d, want %d", code, dispatch.ExitFailure)
	}
}

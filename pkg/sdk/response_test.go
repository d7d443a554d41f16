package sdk

import (
	"errors"
	"testing"
)

func predicates[T any](r Response[T]) (int, [3]bool) {
	flags := [3]bool{r.IsSuccessful(), r.IsAPIError(), r.IsNoAnswer()}
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n, flags
}

func TestExactlyOnePredicateHolds(t *testing.T) {
	cases := []struct {
		name string
		resp Response[int]
		want [3]bool
	}{
		{"successful", Successful(7), [3]bool{true, false, false}},
		{"api error", APIError[int](ErrorData{ErrorMessage: "boom", StatusCode: 500}), [3]bool{false, true, false}},
		{"no answer", NoAnswer[int](), [3]bool{false, false, true}},
		{"zero value", Response[int]{}, [3]bool{false, false, true}},
	}
	for _, tc := range cases {
		n, flags := predicates(tc.resp)
		if n != 1 {
			t.Fatalf("%s: expected exactly one predicate, got %d", tc.name, n)
		}
		if flags != tc.want {
			t.Fatalf("%s: predicates = %v, want %v", tc.name, flags, tc.want)
		}
	}
}

func TestIsCompleted(t *testing.T) {
	if !Successful("x").IsCompleted() || !APIError[string](ErrorData{}).IsCompleted() {
		t.Fatalf("answered responses must be completed")
	}
	if NoAnswer[string]().IsCompleted() {
		t.Fatalf("no answer must not be completed")
	}
}

func expectMisuse(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		var misuse *MisuseError
		if !ok || !errors.As(err, &misuse) {
			t.Fatalf("expected *MisuseError panic, got %v", r)
		}
	}()
	fn()
}

func TestDataOnWrongVariantPanics(t *testing.T) {
	expectMisuse(t, func() { _ = APIError[int](ErrorData{StatusCode: 404}).Data() })
	expectMisuse(t, func() { _ = NoAnswer[int]().Data() })
	expectMisuse(t, func() { _ = Successful(1).ErrorData() })
	expectMisuse(t, func() { _ = NoAnswer[int]().ErrorData() })
}

func TestOKAccessors(t *testing.T) {
	if v, ok := Successful(3).DataOK(); !ok || v != 3 {
		t.Fatalf("DataOK = %v, %v", v, ok)
	}
	if _, ok := NoAnswer[int]().DataOK(); ok {
		t.Fatalf("DataOK must report false for no answer")
	}
	e := ErrorData{ErrorMessage: "Error!", StatusCode: 401}
	if got, ok := APIError[int](e).ErrorDataOK(); !ok || got != e {
		t.Fatalf("ErrorDataOK = %v, %v", got, ok)
	}
}

func TestMatchCallsActiveBranchOnly(t *testing.T) {
	var calls []string
	record := func(r Response[int]) {
		r.Match(
			func(int) { calls = append(calls, "success") },
			func(ErrorData) { calls = append(calls, "error") },
			func() { calls = append(calls, "no_answer") },
		)
	}
	record(Successful(1))
	record(APIError[int](ErrorData{}))
	record(NoAnswer[int]())

	want := []string{"success", "error", "no_answer"}
	if len(calls) != len(want) {
		t.Fatalf("unexpected calls %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("unexpected calls %v", calls)
		}
	}
}

func TestErrorText(t *testing.T) {
	structured := ErrorData{ErrorMessage: `{"text":"invalid key"}`, StatusCode: 401}
	if got := structured.ErrorText(); got != "invalid key" {
		t.Fatalf("ErrorText = %q", got)
	}
	plain := ErrorData{ErrorMessage: "Error!", StatusCode: 500}
	if got := plain.ErrorText(); got != "Error!" {
		t.Fatalf("ErrorText = %q", got)
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeAPIError.String() != "api_error" || OutcomeNoAnswer.String() != "no_answer" || OutcomeSuccessful.String() != "successful" {
		t.Fatalf("unexpected outcome names")
	}
}

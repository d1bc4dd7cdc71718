package fn

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestResultUnwrap(t *testing.T) {
	v, err := Ok(7).Unwrap()
	if err != nil || v != 7 {
		t.Errorf("Ok(7).Unwrap() = %d, %v", v, err)
	}

	sentinel := errors.New("boom")
	if _, err := Err[int](sentinel).Unwrap(); !errors.Is(err, sentinel) {
		t.Errorf("Err.Unwrap() error = %v, want sentinel", err)
	}
	if got := Err[int](sentinel).UnwrapOr(3); got != 3 {
		t.Errorf("UnwrapOr = %d, want fallback 3", got)
	}
	if got := Ok(9).UnwrapOr(3); got != 9 {
		t.Errorf("UnwrapOr on Ok = %d, want 9", got)
	}
}

func TestErrf(t *testing.T) {
	_, err := Errf[int]("row %d: bad value", 4).Unwrap()
	if err == nil || !strings.Contains(err.Error(), "row 4") {
		t.Errorf("Errf error = %v", err)
	}
}

func TestMapResult(t *testing.T) {
	r := MapResult(Ok(21), func(v int) string { return strconv.Itoa(v * 2) })
	if v, _ := r.Unwrap(); v != "42" {
		t.Errorf("MapResult = %q, want 42", v)
	}

	fail := MapResult(Err[int](errors.New("nope")), func(v int) string { return "" })
	if fail.IsOk() {
		t.Error("MapResult on Err should stay Err")
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(5, nil); r.IsErr() {
		t.Error("FromPair(v, nil) should be Ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Error("FromPair(_, err) should be Err")
	}
}

func TestCollect(t *testing.T) {
	vals, err := Collect([]Result[int]{Ok(1), Ok(2), Ok(3)}).Unwrap()
	if err != nil || len(vals) != 3 || vals[2] != 3 {
		t.Errorf("Collect = %v, %v", vals, err)
	}

	sentinel := errors.New("second failed")
	r := Collect([]Result[int]{Ok(1), Err[int](sentinel), Ok(3)})
	if _, err := r.Unwrap(); !errors.Is(err, sentinel) {
		t.Errorf("Collect error = %v, want first failure", err)
	}
}

func TestThenShortCircuits(t *testing.T) {
	double := MapStage(func(v int) int { return v * 2 })
	var stage Stage[int, string] = func(_ context.Context, v int) Result[string] {
		if v > 10 {
			return Errf[string]("too big: %d", v)
		}
		return Ok(strconv.Itoa(v))
	}

	got, err := Then(double, stage)(context.Background(), 4).Unwrap()
	if err != nil || got != "8" {
		t.Fatalf("Then = %q, %v", got, err)
	}

	secondRan := false
	failing := Then(
		Stage[int, int](func(context.Context, int) Result[int] { return Err[int](errors.New("first")) }),
		Stage[int, int](func(_ context.Context, v int) Result[int] { secondRan = true; return Ok(v) }),
	)
	if failing(context.Background(), 1).IsOk() {
		t.Error("composed stage should fail")
	}
	if secondRan {
		t.Error("second stage ran after first failed")
	}
}

func TestTapStagePassesThrough(t *testing.T) {
	var seen int
	tap := TapStage(func(_ context.Context, v int) { seen = v })
	if v, _ := tap(context.Background(), 11).Unwrap(); v != 11 || seen != 11 {
		t.Errorf("TapStage value = %d, seen = %d", v, seen)
	}
}

func TestTracedStagePropagates(t *testing.T) {
	ok := TracedStage("test.ok", MapStage(func(v int) int { return v + 1 }))
	if v, _ := ok(context.Background(), 1).Unwrap(); v != 2 {
		t.Errorf("traced stage value = %d", v)
	}

	sentinel := errors.New("inner")
	bad := TracedStage("test.bad", Stage[int, int](func(context.Context, int) Result[int] {
		return Err[int](sentinel)
	}))
	if _, err := bad(context.Background(), 1).Unwrap(); !errors.Is(err, sentinel) {
		t.Errorf("traced stage error = %v", err)
	}
}

func TestParMap(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	out := ParMap(items, 8, func(v int) int { return v * v })
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}

	if got := ParMap([]int{}, 4, func(v int) int { return v }); len(got) != 0 {
		t.Errorf("empty input produced %d outputs", len(got))
	}
}

func TestFanOutResult(t *testing.T) {
	vals, err := FanOutResult(
		func() Result[int] { return Ok(1) },
		func() Result[int] { return Ok(2) },
	).Unwrap()
	if err != nil || vals[0] != 1 || vals[1] != 2 {
		t.Fatalf("FanOutResult = %v, %v", vals, err)
	}

	sentinel := errors.New("b failed")
	r := FanOutResult(
		func() Result[int] { return Ok(1) },
		func() Result[int] { return Err[int](sentinel) },
	)
	if _, err := r.Unwrap(); !errors.Is(err, sentinel) {
		t.Errorf("FanOutResult error = %v", err)
	}
}

func TestRetry(t *testing.T) {
	var calls atomic.Int32
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	r := Retry(context.Background(), opts, func(context.Context) Result[int] {
		if calls.Add(1) < 3 {
			return Err[int](errors.New("transient"))
		}
		return Ok(99)
	})
	if v, err := r.Unwrap(); err != nil || v != 99 {
		t.Fatalf("Retry = %d, %v", v, err)
	}
	if calls.Load() != 3 {
		t.Errorf("f called %d times, want 3", calls.Load())
	}

	calls.Store(0)
	r = Retry(context.Background(), opts, func(context.Context) Result[int] {
		calls.Add(1)
		return Err[int](errors.New("permanent"))
	})
	if r.IsOk() || calls.Load() != 3 {
		t.Errorf("exhausted retry: ok=%v calls=%d", r.IsOk(), calls.Load())
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Retry(ctx, RetryOpts{MaxAttempts: 5, InitialWait: time.Hour}, func(context.Context) Result[int] {
		return Err[int](errors.New("always"))
	})
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestMapFilterUnique(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	if doubled[2] != 6 {
		t.Errorf("Map = %v", doubled)
	}

	evens := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	if len(evens) != 2 || evens[0] != 2 {
		t.Errorf("Filter = %v", evens)
	}

	uniq := Unique([]string{"a", "b", "a", "c", "b"})
	if len(uniq) != 3 || uniq[0] != "a" || uniq[2] != "c" {
		t.Errorf("Unique = %v", uniq)
	}
}

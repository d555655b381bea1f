package generation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"skillbridge/internal/assessment"
	"skillbridge/internal/cache"
)

type fakeGenerator struct {
	calls atomic.Int32
	set   *RecommendationSet
	err   error
	gate  chan struct{} // when set, Generate blocks until closed
}

func (f *fakeGenerator) Generate(ctx context.Context, in Input) (*RecommendationSet, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := *f.set
	return &out, nil
}

func primarySet() *RecommendationSet {
	return &RecommendationSet{
		MatchScore: 81,
		Steps: []Step{
			{Title: "Own an on-call rotation", Description: "Lead incident response for a service.", Skills: []string{"Kubernetes"}},
			{Title: "Write a design doc", Description: "Propose a cache layer.", Skills: nil},
		},
	}
}

func newService(t *testing.T, gen Generator) *Service {
	t.Helper()
	mem := cache.NewMemoryStore(cache.MemoryConfig{})
	t.Cleanup(func() { mem.Close() })
	return NewService(mem, gen, Config{GenerateTimeout: time.Second})
}

func TestGetOrGeneratePrimaryThenCached(t *testing.T) {
	gen := &fakeGenerator{set: primarySet()}
	s := newService(t, gen)
	ctx := context.Background()
	in := Input{AssessmentID: "a-1", Role: "SRE", Steps: 2}

	first, err := s.GetOrGenerate(ctx, in)
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if first.Outcome != OutcomePrimary || first.Set.UsedFallback {
		t.Fatalf("expected primary outcome, got %s (fallback=%v)", first.Outcome, first.Set.UsedFallback)
	}
	if first.Set.AssessmentID != "a-1" || first.Set.Role != "SRE" {
		t.Fatalf("identity fields not stamped: %+v", first.Set)
	}
	if err := Validate(first.Set); err != nil {
		t.Fatalf("primary set must satisfy schema: %v", err)
	}

	second, err := s.GetOrGenerate(ctx, in)
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if second.Outcome != OutcomeCached {
		t.Fatalf("expected cached outcome, got %s", second.Outcome)
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("generator should run once, ran %d times", gen.calls.Load())
	}
	if diff := cmp.Diff(first.Set, second.Set); diff != "" {
		t.Fatalf("cached set differs (-first +second):\n%s", diff)
	}
}

func TestGetOrGenerateFallbackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream 500")}
	s := newService(t, gen)

	res, err := s.GetOrGenerate(context.Background(), Input{AssessmentID: "a-2", Role: "Backend Engineer"})
	if err != nil {
		t.Fatalf("generation failure must not surface as error: %v", err)
	}
	if res.Outcome != OutcomeFallback || !res.Set.UsedFallback {
		t.Fatalf("expected fallback, got %s (fallback=%v)", res.Outcome, res.Set.UsedFallback)
	}
	if err := Validate(res.Set); err != nil {
		t.Fatalf("fallback set must satisfy the primary schema: %v", err)
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("primary must not be retried, got %d calls", gen.calls.Load())
	}

	again, _ := s.GetOrGenerate(context.Background(), Input{AssessmentID: "a-2", Role: "Backend Engineer"})
	if again.Outcome != OutcomeCached || !again.Set.UsedFallback {
		t.Fatalf("fallback result should be cached with its flag, got %s", again.Outcome)
	}
}

func TestGetOrGenerateFallbackOnMalformedOutput(t *testing.T) {
	gen := &fakeGenerator{set: &RecommendationSet{MatchScore: 500, Steps: []Step{{Title: "x", Description: "y"}}}}
	s := newService(t, gen)

	res, err := s.GetOrGenerate(context.Background(), Input{AssessmentID: "a-3"})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if res.Outcome != OutcomeFallback {
		t.Fatalf("schema-invalid primary output should route to fallback, got %s", res.Outcome)
	}
}

func TestGetOrGenerateDisabledGenerator(t *testing.T) {
	s := newService(t, nil)

	res, err := s.GetOrGenerate(context.Background(), Input{
		AssessmentID: "a-4",
		Assessment:   &assessment.Assessment{Skills: []assessment.Skill{}},
	})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if res.Outcome != OutcomeFallback || res.Set.MatchScore != assessment.DefaultScore {
		t.Fatalf("expected default-score fallback, got %+v", res)
	}
}

func TestGetOrGenerateInvalidInput(t *testing.T) {
	s := newService(t, &fakeGenerator{set: primarySet()})

	for _, in := range []Input{
		{AssessmentID: "  "},
		{AssessmentID: "a", Steps: MaxSteps + 1},
		{AssessmentID: "a", Steps: -1},
	} {
		if _, err := s.GetOrGenerate(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestGetOrGenerateConcurrentCallsShareOneGeneration(t *testing.T) {
	gen := &fakeGenerator{set: primarySet(), gate: make(chan struct{})}
	s := newService(t, gen)
	in := Input{AssessmentID: "a-5", Role: "SRE", Steps: 2}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.GetOrGenerate(context.Background(), in)
			if err != nil {
				t.Errorf("GetOrGenerate: %v", err)
			}
			results[i] = res
		}(i)
	}

	// let every caller reach the flight before releasing the generator
	time.Sleep(50 * time.Millisecond)
	close(gen.gate)
	wg.Wait()

	if got := gen.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one generation, got %d", got)
	}
	for i, r := range results {
		if r.Set.UsedFallback {
			t.Fatalf("caller %d got fallback", i)
		}
		if diff := cmp.Diff(results[0].Set, r.Set); diff != "" {
			t.Fatalf("caller %d saw a different set:\n%s", i, diff)
		}
	}
}

func TestGenerationCacheGetSetHas(t *testing.T) {
	s := newService(t, nil)
	ctx := context.Background()
	key := Key(Input{AssessmentID: "a-6", Role: "Data Analyst", Steps: 3})

	if ok, _ := s.Has(ctx, key); ok {
		t.Fatalf("expected empty cache")
	}

	want := Fallback(Input{AssessmentID: "a-6", Role: "Data Analyst", Steps: 3}, time.Unix(1_700_000_000, 0))
	if err := s.Set(ctx, key, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := s.Has(ctx, key); !ok {
		t.Fatalf("expected Has after Set")
	}
	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyComponents(t *testing.T) {
	analyzed := &assessment.Assessment{
		AssessmentID:     "a-1",
		IsRealAssessment: true,
		GeneratedAt:      time.Date(2026, 3, 1, 12, 0, 0, 5, time.UTC),
	}

	tests := []struct {
		in   Input
		want string
	}{
		{Input{AssessmentID: "a-1"}, "recommendations:a-1:software engineer:5:none"},
		{Input{AssessmentID: "a-1", Role: " SRE "}, "recommendations:a-1:sre:5:none"},
		{Input{AssessmentID: "a-1", Role: "SRE", Steps: 4}, "recommendations:a-1:sre:4:none"},
		{Input{AssessmentID: "a:1", Role: "x"}, "recommendations:a%3A1:x:5:none"},
		{Input{AssessmentID: "a-1", Role: "SRE", Steps: 4, Assessment: analyzed}, "recommendations:a-1:sre:4:2026-03-01T12%3A00%3A00.000000005Z"},
	}
	for _, tt := range tests {
		if got := Key(tt.in).String(); got != tt.want {
			t.Errorf("Key(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyNormalizesDefaults(t *testing.T) {
	same := [][2]Input{
		{{AssessmentID: "a-1"}, {AssessmentID: "a-1", Steps: DefaultSteps}},
		{{AssessmentID: "a-1"}, {AssessmentID: "a-1", Role: DefaultRole}},
		{{AssessmentID: " a-1 ", Role: "sre"}, {AssessmentID: "a-1", Role: "SRE"}},
		{{AssessmentID: "a-1"}, {AssessmentID: "a-1", Assessment: assessmentPtr(assessment.Placeholder("a-1", time.Now()))}},
	}
	for _, pair := range same {
		if a, b := Key(pair[0]).String(), Key(pair[1]).String(); a != b {
			t.Errorf("expected equal keys, got %q and %q", a, b)
		}
	}
}

func TestGetOrGenerateDefaultsShareOneGeneration(t *testing.T) {
	gen := &fakeGenerator{set: primarySet()}
	s := newService(t, gen)
	ctx := context.Background()

	first, err := s.GetOrGenerate(ctx, Input{AssessmentID: "a-7"})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	second, err := s.GetOrGenerate(ctx, Input{AssessmentID: "a-7", Role: DefaultRole, Steps: DefaultSteps})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if first.Outcome != OutcomePrimary || second.Outcome != OutcomeCached {
		t.Fatalf("expected primary then cached, got %s then %s", first.Outcome, second.Outcome)
	}
	if n := gen.calls.Load(); n != 1 {
		t.Fatalf("expected one generation, got %d", n)
	}
}

func TestGetOrGenerateRegeneratesAfterAnalysis(t *testing.T) {
	gen := &fakeGenerator{set: primarySet()}
	s := newService(t, gen)
	ctx := context.Background()

	if _, err := s.GetOrGenerate(ctx, Input{AssessmentID: "a-8"}); err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}

	analyzed := assessment.Analyze("a-8", "Senior Go engineer.", time.Unix(1_700_000_000, 0))
	res, err := s.GetOrGenerate(ctx, Input{AssessmentID: "a-8", Assessment: &analyzed})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if res.Outcome != OutcomePrimary {
		t.Fatalf("expected a fresh generation for the analyzed assessment, got %s", res.Outcome)
	}
	if n := gen.calls.Load(); n != 2 {
		t.Fatalf("expected two generations, got %d", n)
	}
}

func assessmentPtr(a assessment.Assessment) *assessment.Assessment { return &a }

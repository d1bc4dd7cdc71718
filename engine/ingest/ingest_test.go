package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/graph"
	"github.com/RelioAI/relio-mvp/engine/semantic"
	"github.com/RelioAI/relio-mvp/pkg/resilience"
)

type stubVectorizer struct{}

func (stubVectorizer) TextVector(_ string) []float32 {
	return []float32{0.5, 0.5, 0, 0}
}

type fakeResult struct{}

func (fakeResult) Next(_ context.Context) bool { return false }
func (fakeResult) Record() *neo4j.Record       { return nil }

type fakeSession struct {
	runs   int
	runErr error
}

func (s *fakeSession) Run(_ context.Context, _ string, _ map[string]any) (graph.CypherResult, error) {
	s.runs++
	return fakeResult{}, s.runErr
}
func (s *fakeSession) Close(_ context.Context) error { return nil }

type fakeOpener struct {
	session *fakeSession
}

func (o *fakeOpener) OpenSession(_ context.Context) graph.CypherSession { return o.session }

type fakePoints struct {
	lastUpsert *pb.UpsertPoints
	upsertErr  error
}

func (p *fakePoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	p.lastUpsert = in
	return &pb.PointsOperationResponse{}, p.upsertErr
}
func (p *fakePoints) Delete(_ context.Context, _ *pb.DeletePoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	return &pb.PointsOperationResponse{}, nil
}
func (p *fakePoints) Search(_ context.Context, _ *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	return &pb.SearchResponse{}, nil
}

type fakeCollections struct{}

func (fakeCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	return &pb.ListCollectionsResponse{}, nil
}
func (fakeCollections) Create(_ context.Context, _ *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	return &pb.CollectionOperationResponse{Result: true}, nil
}
func (fakeCollections) Delete(_ context.Context, _ *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func testDeps(points *fakePoints, session *fakeSession) Deps {
	return Deps{
		Vectorizer:  stubVectorizer{},
		VectorStore: semantic.NewWithClients(points, fakeCollections{}, "complaints"),
		GraphStore:  graph.NewWithOpener(&fakeOpener{session: session}),
	}
}

func TestValidate(t *testing.T) {
	res := Validate(context.Background(), domain.Complaint{Text: "hm"})
	if res.IsOk() {
		t.Fatal("expected validation failure for short text")
	}

	res = Validate(context.Background(), domain.Complaint{Text: "engine stalls at idle"})
	c, err := res.Unwrap()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.ID == "" {
		t.Error("no ID assigned")
	}
	if c.PostedAt.IsZero() {
		t.Error("no posted_at assigned")
	}

	res = Validate(context.Background(), domain.Complaint{ID: "keep-me", Text: "engine stalls at idle"})
	c, _ = res.Unwrap()
	if c.ID != "keep-me" {
		t.Errorf("ID overwritten: %q", c.ID)
	}
}

func TestAnalyze(t *testing.T) {
	in := domain.Complaint{
		Text: "My 2019 Honda Civic transmission is slipping, rough shifts and a frustrating failure",
	}
	res := Analyze(context.Background(), in)
	a, err := res.Unwrap()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Complaint.Category != string(domain.SymptomTransmission) {
		t.Errorf("category = %q", a.Complaint.Category)
	}
	if a.Complaint.Vehicle.Make != "Honda" || a.Complaint.Vehicle.Year != 2019 {
		t.Errorf("vehicle = %+v", a.Complaint.Vehicle)
	}
	if a.Sentiment.Net >= 0 {
		t.Errorf("sentiment net = %v, want negative", a.Sentiment.Net)
	}

	// Pre-tagged fields survive analysis untouched.
	in.Category = string(domain.SymptomBrakes)
	in.Vehicle = domain.Vehicle{Make: "Ford", Model: "Focus", Year: 2016}
	a, _ = Analyze(context.Background(), in).Unwrap()
	if a.Complaint.Category != string(domain.SymptomBrakes) {
		t.Errorf("category overwritten: %q", a.Complaint.Category)
	}
	if a.Complaint.Vehicle.Make != "Ford" {
		t.Errorf("vehicle overwritten: %+v", a.Complaint.Vehicle)
	}
}

func TestPipeline_Success(t *testing.T) {
	points := &fakePoints{}
	session := &fakeSession{}
	pipeline := NewPipeline(testDeps(points, session))

	res := pipeline(context.Background(), domain.Complaint{
		ID:   "cmp-9",
		Text: "coolant leak near the radiator, engine overheating on the highway",
	})
	id, err := res.Unwrap()
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if id != "cmp-9" {
		t.Errorf("returned id = %q", id)
	}
	if session.runs != 1 {
		t.Errorf("graph save ran %d times, want 1", session.runs)
	}
	if points.lastUpsert == nil || len(points.lastUpsert.GetPoints()) != 1 {
		t.Fatal("vector upsert not called with one point")
	}

	// Same complaint ID maps to the same point ID on re-ingest.
	first := points.lastUpsert.GetPoints()[0].GetId().GetUuid()
	if _, err := pipeline(context.Background(), domain.Complaint{
		ID:   "cmp-9",
		Text: "coolant leak near the radiator, engine overheating on the highway",
	}).Unwrap(); err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	if again := points.lastUpsert.GetPoints()[0].GetId().GetUuid(); again != first {
		t.Errorf("point ID changed across re-ingest: %q vs %q", first, again)
	}
}

func TestPipeline_InvalidShortCircuits(t *testing.T) {
	points := &fakePoints{}
	session := &fakeSession{}
	pipeline := NewPipeline(testDeps(points, session))

	res := pipeline(context.Background(), domain.Complaint{Text: "bad"})
	if res.IsOk() {
		t.Fatal("expected failure")
	}
	if _, err := res.Unwrap(); !errors.Is(err, domain.ErrEmptyComplaint) {
		t.Errorf("error = %v, want ErrEmptyComplaint", err)
	}
	if session.runs != 0 || points.lastUpsert != nil {
		t.Error("stores reached despite validation failure")
	}
}

func TestPipeline_GraphFailure(t *testing.T) {
	points := &fakePoints{}
	session := &fakeSession{runErr: errors.New("neo4j down")}
	pipeline := NewPipeline(testDeps(points, session))

	res := pipeline(context.Background(), domain.Complaint{
		Text: "brake pedal goes to the floor, very scary failure",
	})
	if res.IsOk() {
		t.Fatal("expected failure")
	}
	if points.lastUpsert != nil {
		t.Error("vector upsert ran after graph failure")
	}
}

func TestPipeline_BreakerShedsStorage(t *testing.T) {
	points := &fakePoints{}
	session := &fakeSession{runErr: errors.New("neo4j down")}
	deps := testDeps(points, session)
	deps.Breaker = resilience.NewBreaker(resilience.BreakerOpts{
		FailThreshold: 2,
		Timeout:       time.Minute,
		HalfOpenMax:   1,
	})
	pipeline := NewPipeline(deps)

	msg := domain.Complaint{Text: "transmission slips hard between second and third gear"}
	for i := 0; i < 2; i++ {
		if pipeline(context.Background(), msg).IsOk() {
			t.Fatalf("call %d: expected storage failure", i)
		}
	}
	if session.runs != 2 {
		t.Fatalf("graph save ran %d times before breaker opened, want 2", session.runs)
	}

	// Open breaker fails fast without touching the stores.
	res := pipeline(context.Background(), msg)
	if _, err := res.Unwrap(); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if session.runs != 2 {
		t.Errorf("graph save ran %d times while open, want 2", session.runs)
	}
}

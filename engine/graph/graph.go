package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/pkg/repo"
)

// CypherResult is the slice of neo4j.ResultWithContext the store reads.
type CypherResult = repo.Result

// CypherSession runs parameterized Cypher statements.
type CypherSession = repo.Session

// SessionOpener opens sessions against the graph database. Satisfied by the
// driver adapter in production and by mocks in tests.
type SessionOpener interface {
	OpenSession(ctx context.Context) CypherSession
}

type driverOpener struct {
	driver neo4j.DriverWithContext
}

type driverSession struct {
	sess neo4j.SessionWithContext
}

func (o driverOpener) OpenSession(ctx context.Context) CypherSession {
	return driverSession{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

func (s driverSession) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	return s.sess.Run(ctx, cypher, params)
}

func (s driverSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

// GraphStore owns the complaint knowledge graph.
type GraphStore struct {
	opener     SessionOpener
	complaints *repo.Neo4jRepo[domain.Complaint, string]
}

// New creates a GraphStore over a Neo4j driver.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return NewWithOpener(driverOpener{driver: driver})
}

// NewWithOpener builds a store over an explicit session opener. Used in tests.
func NewWithOpener(opener SessionOpener) *GraphStore {
	return &GraphStore{
		opener:     opener,
		complaints: newComplaintRepo(opener.OpenSession),
	}
}

// GetComplaint returns a stored complaint by ID.
func (g *GraphStore) GetComplaint(ctx context.Context, id string) (domain.Complaint, error) {
	return g.complaints.Get(ctx, id)
}

// ListComplaints pages through stored complaints.
func (g *GraphStore) ListComplaints(ctx context.Context, opts repo.ListOpts) ([]domain.Complaint, error) {
	return g.complaints.List(ctx, opts)
}

// DeleteComplaint removes a complaint node and its relationships. The
// vehicle hierarchy stays; other complaints may still hang off it.
func (g *GraphStore) DeleteComplaint(ctx context.Context, id string) error {
	return g.complaints.Delete(ctx, id)
}

// SaveComplaint upserts a complaint together with its vehicle hierarchy:
// Make -> Model -> ModelYear, with the complaint attached to the model year.
// Safe to call again for the same complaint ID.
func (g *GraphStore) SaveComplaint(ctx context.Context, c domain.Complaint) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	return runSaveComplaint(ctx, sess, c)
}

// SaveComplaintBatch upserts complaints over one session. Any failure aborts
// the remainder.
func (g *GraphStore) SaveComplaintBatch(ctx context.Context, complaints []domain.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	for _, c := range complaints {
		if err := runSaveComplaint(ctx, sess, c); err != nil {
			return err
		}
	}
	return nil
}

func runSaveComplaint(ctx context.Context, sess CypherSession, c domain.Complaint) error {
	v := c.Vehicle
	cypher := `MERGE (mk:Make {name: $make})
		MERGE (mk)-[:HAS_MODEL]->(m:Model {name: $model, make: $make})
		MERGE (m)-[:HAS_YEAR]->(my:ModelYear {id: $vehicleID})
		SET my.make = $make, my.model = $model, my.year = $year
		MERGE (c:Complaint {id: $id})
		SET c.text = $text, c.category = $category, c.severity = $severity,
		    c.risk_label = $riskLabel, c.source = $source, c.posted_at = $postedAt
		MERGE (c)-[:ABOUT]->(my)`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"make":      v.Make,
		"model":     v.Model,
		"year":      v.Year,
		"vehicleID": fmt.Sprintf("%d-%s-%s", v.Year, v.Make, v.Model),
		"id":        c.ID,
		"text":      c.Text,
		"category":  c.Category,
		"severity":  c.Severity,
		"riskLabel": c.RiskLabel,
		"source":    c.Source,
		"postedAt":  c.PostedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("graph: save complaint %s: %w", c.ID, err)
	}
	return nil
}

// IssueSummary returns complaint counts per symptom category for one model,
// derived from the stored complaints.
func (g *GraphStore) IssueSummary(ctx context.Context, make, model string) ([]IssueCount, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (c:Complaint)-[:ABOUT]->(my:ModelYear {make: $make, model: $model})
		WHERE c.category <> ''
		RETURN c.category AS category, count(*) AS count
		ORDER BY count DESC, category ASC`
	result, err := sess.Run(ctx, cypher, map[string]any{"make": make, "model": model})
	if err != nil {
		return nil, fmt.Errorf("graph: issue summary %s %s: %w", make, model, err)
	}

	var issues []IssueCount
	for result.Next(ctx) {
		rec := result.Record()
		cat, _ := rec.Get("category")
		cnt, _ := rec.Get("count")
		issue := IssueCount{}
		if s, ok := cat.(string); ok {
			issue.Category = s
		}
		if n, ok := cnt.(int64); ok {
			issue.Count = n
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// TopModels returns the models with the most complaints, with mean risk label.
func (g *GraphStore) TopModels(ctx context.Context, limit int) ([]ModelStats, error) {
	if limit <= 0 {
		limit = 10
	}
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (c:Complaint)-[:ABOUT]->(my:ModelYear)
		RETURN my.make AS make, my.model AS model,
		       count(*) AS complaints, avg(c.risk_label) AS avg_risk
		ORDER BY complaints DESC, make ASC LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"limit": int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("graph: top models: %w", err)
	}

	var stats []ModelStats
	for result.Next(ctx) {
		rec := result.Record()
		s := ModelStats{}
		if v, ok := rec.Get("make"); ok {
			if str, ok := v.(string); ok {
				s.Make = str
			}
		}
		if v, ok := rec.Get("model"); ok {
			if str, ok := v.(string); ok {
				s.Model = str
			}
		}
		if v, ok := rec.Get("complaints"); ok {
			if n, ok := v.(int64); ok {
				s.Complaints = n
			}
		}
		if v, ok := rec.Get("avg_risk"); ok {
			if f, ok := v.(float64); ok {
				s.AvgRisk = f
			}
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// NodeCounts returns node counts grouped by label. Dashboard health panel.
func (g *GraphStore) NodeCounts(ctx context.Context) (map[string]int64, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n) RETURN labels(n)[0] AS type, count(*) AS count`
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: node counts: %w", err)
	}
	counts := make(map[string]int64)
	for result.Next(ctx) {
		rec := result.Record()
		typ, _ := rec.Get("type")
		cnt, _ := rec.Get("count")
		if t, ok := typ.(string); ok {
			if c, ok := cnt.(int64); ok {
				counts[t] = c
			}
		}
	}
	return counts, nil
}

package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/pkg/repo"
)

// newComplaintRepo creates a Neo4j-backed repository for Complaint nodes.
func newComplaintRepo(open func(context.Context) repo.Session) *repo.Neo4jRepo[domain.Complaint, string] {
	return repo.NewNeo4jRepo[domain.Complaint, string](
		open,
		"Complaint",
		complaintFromRecord,
	)
}

func complaintFromRecord(rec *neo4j.Record) (domain.Complaint, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return domain.Complaint{}, err
	}
	props := node.Props
	c := domain.Complaint{
		ID:   strProp(props, "id"),
		Text: strProp(props, "text"),
		Vehicle: domain.Vehicle{
			Make:  strProp(props, "make"),
			Model: strProp(props, "model"),
			Year:  intProp(props, "year"),
		},
		Category:  strProp(props, "category"),
		Severity:  floatProp(props, "severity"),
		RiskLabel: floatProp(props, "risk_label"),
		Source:    strProp(props, "source"),
	}
	if ts := strProp(props, "posted_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			c.PostedAt = t
		}
	}
	return c, nil
}

func strProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func intProp(props map[string]any, key string) int {
	if n, ok := props[key].(int64); ok {
		return int(n)
	}
	return 0
}

func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

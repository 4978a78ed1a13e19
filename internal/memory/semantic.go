package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/baserah/baserah/internal/models"
	"github.com/dgraph-io/dgo/v230"
	"github.com/dgraph-io/dgo/v230/protos/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DgraphFactStore implements FactStore using Dgraph
type DgraphFactStore struct {
	client *dgo.Dgraph
	conn   *grpc.ClientConn
}

// NewDgraphFactStore connects to a Dgraph alpha and installs the fact schema
func NewDgraphFactStore(ctx context.Context, config *Config) (*DgraphFactStore, error) {
	// Connect to Dgraph gRPC endpoint
	conn, err := grpc.Dial(config.DgraphAlphaURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Dgraph: %w", err)
	}

	store := &DgraphFactStore{
		client: dgo.NewDgraphClient(api.NewDgraphClient(conn)),
		conn:   conn,
	}

	if err := store.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema sets up the Dgraph schema for facts
func (s *DgraphFactStore) initSchema(ctx context.Context) error {
	schema := `
		type Fact {
			fact.key
			fact.subject
			fact.predicate
			fact.object
			fact.confidence
		}

		fact.key: string @index(exact) @upsert .
		fact.subject: string @index(exact, trigram) .
		fact.predicate: string @index(exact) .
		fact.object: string @index(fulltext) .
		fact.confidence: float .
	`

	return s.client.Alter(ctx, &api.Operation{Schema: schema})
}

type dgraphFact struct {
	UID        string   `json:"uid,omitempty"`
	Key        string   `json:"fact.key"`
	Subject    string   `json:"fact.subject"`
	Predicate  string   `json:"fact.predicate"`
	Object     string   `json:"fact.object"`
	Confidence float64  `json:"fact.confidence"`
	Type       []string `json:"dgraph.type,omitempty"`
}

func factKey(f models.KnowledgeFact) string {
	return f.Subject + "|" + f.Predicate + "|" + f.Object
}

// StoreFacts upserts facts keyed by subject, predicate and object
func (s *DgraphFactStore) StoreFacts(ctx context.Context, facts []models.KnowledgeFact) error {
	for _, f := range facts {
		key, err := json.Marshal(factKey(f))
		if err != nil {
			return err
		}

		set, err := json.Marshal(dgraphFact{
			UID:        "uid(v)",
			Key:        factKey(f),
			Subject:    f.Subject,
			Predicate:  f.Predicate,
			Object:     f.Object,
			Confidence: f.Confidence,
			Type:       []string{"Fact"},
		})
		if err != nil {
			return fmt.Errorf("failed to marshal fact: %w", err)
		}

		req := &api.Request{
			Query:     fmt.Sprintf(`query { q(func: eq(fact.key, %s)) { v as uid } }`, key),
			Mutations: []*api.Mutation{{SetJson: set}},
			CommitNow: true,
		}

		txn := s.client.NewTxn()
		_, err = txn.Do(ctx, req)
		txn.Discard(ctx)
		if err != nil {
			return fmt.Errorf("failed to store fact %q: %w", factKey(f), err)
		}
	}
	return nil
}

// LoadFacts reads every fact from the graph
func (s *DgraphFactStore) LoadFacts(ctx context.Context) ([]models.KnowledgeFact, error) {
	q := `{
		facts(func: type(Fact)) {
			fact.subject
			fact.predicate
			fact.object
			fact.confidence
		}
	}`

	txn := s.client.NewReadOnlyTxn()
	defer txn.Discard(ctx)

	resp, err := txn.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var result struct {
		Facts []dgraphFact `json:"facts"`
	}
	if err := json.Unmarshal(resp.Json, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	facts := make([]models.KnowledgeFact, 0, len(result.Facts))
	for _, f := range result.Facts {
		facts = append(facts, models.KnowledgeFact{
			Subject:    f.Subject,
			Predicate:  f.Predicate,
			Object:     f.Object,
			Confidence: f.Confidence,
		})
	}
	return facts, nil
}

// Close closes the Dgraph connection
func (s *DgraphFactStore) Close() error {
	return s.conn.Close()
}

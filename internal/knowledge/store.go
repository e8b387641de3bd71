// Package knowledge holds the Q&A knowledge base backing retrieval-augmented
// message generation. Entries are indexed in Typesense for keyword search.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"

	"prodicity.app/engage/common/id"
)

// Document is one knowledge base entry.
type Document struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"created_at"`
}

// Snippet is a retrieval hit shaped for prompt injection.
type Snippet struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Question   string   `json:"question"`
	Snippet    string   `json:"snippet"`
	Tags       []string `json:"tags"`
	Similarity float64  `json:"similarity"`
}

// Store is the persistence boundary for the knowledge base.
type Store interface {
	EnsureCollection(ctx context.Context) error
	Add(ctx context.Context, question, answer, source string, tags []string) (Document, error)
	Search(ctx context.Context, query string, limit int) ([]Snippet, error)
	ListRecent(ctx context.Context, limit int) ([]Document, error)
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	TopK       int
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("typesense URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("typesense API key is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("typesense collection name is required")
	}
	return nil
}

type store struct {
	ts  *typesense.Client
	cfg Config
}

func NewStore(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("knowledge config: %w", err)
	}

	ts := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(10*time.Second),
	)

	return &store{ts: ts, cfg: cfg}, nil
}

func (s *store) EnsureCollection(ctx context.Context) error {
	if _, err := s.ts.Collection(s.cfg.Collection).Retrieve(ctx); err == nil {
		return nil
	}

	start := time.Now()
	schema := &api.CollectionSchema{
		Name: s.cfg.Collection,
		Fields: []api.Field{
			{Name: "question", Type: "string"},
			{Name: "answer", Type: "string"},
			{Name: "source", Type: "string", Facet: pointer.True()},
			{Name: "tags", Type: "string[]", Facet: pointer.True()},
			{Name: "created_at", Type: "int64", Sort: pointer.True()},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	if _, err := s.ts.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("create knowledge collection: %w", err)
	}

	slog.InfoContext(ctx, "knowledge collection created",
		"collection", s.cfg.Collection,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *store) Add(ctx context.Context, question, answer, source string, tags []string) (Document, error) {
	doc := Document{
		ID:        id.NewString(),
		Question:  strings.TrimSpace(question),
		Answer:    strings.TrimSpace(answer),
		Source:    source,
		Tags:      tags,
		CreatedAt: time.Now().Unix(),
	}
	if doc.Question == "" || doc.Answer == "" {
		return Document{}, fmt.Errorf("question and answer are required")
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	if _, err := s.ts.Collection(s.cfg.Collection).Documents().Upsert(ctx, doc, &api.DocumentIndexParameters{}); err != nil {
		return Document{}, fmt.Errorf("upsert knowledge document: %w", err)
	}

	slog.InfoContext(ctx, "knowledge entry added", "id", doc.ID, "source", doc.Source)
	return doc, nil
}

func (s *store) Search(ctx context.Context, query string, limit int) ([]Snippet, error) {
	if limit <= 0 {
		limit = s.cfg.TopK
	}
	if limit <= 0 {
		limit = 3
	}

	res, err := s.ts.Collection(s.cfg.Collection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("question,answer,tags"),
		PerPage: pointer.Int(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search knowledge base: %w", err)
	}
	if res.Hits == nil {
		return nil, nil
	}

	snippets := make([]Snippet, 0, len(*res.Hits))
	for _, hit := range *res.Hits {
		doc := docFromHit(hit.Document)
		if doc.ID == "" {
			continue
		}
		sn := Snippet{
			ID:       doc.ID,
			Source:   doc.Source,
			Question: doc.Question,
			Snippet:  doc.Answer,
			Tags:     doc.Tags,
		}
		if hit.TextMatch != nil {
			sn.Similarity = float64(*hit.TextMatch)
		}
		snippets = append(snippets, sn)
	}
	return snippets, nil
}

func (s *store) ListRecent(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}

	res, err := s.ts.Collection(s.cfg.Collection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:       pointer.String("*"),
		QueryBy: pointer.String("question"),
		SortBy:  pointer.String("created_at:desc"),
		PerPage: pointer.Int(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list knowledge base: %w", err)
	}
	if res.Hits == nil {
		return nil, nil
	}

	docs := make([]Document, 0, len(*res.Hits))
	for _, hit := range *res.Hits {
		doc := docFromHit(hit.Document)
		if doc.ID != "" {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func docFromHit(raw *map[string]interface{}) Document {
	if raw == nil {
		return Document{}
	}
	m := *raw

	var doc Document
	doc.ID, _ = m["id"].(string)
	doc.Question, _ = m["question"].(string)
	doc.Answer, _ = m["answer"].(string)
	doc.Source, _ = m["source"].(string)
	if ts, ok := m["created_at"].(float64); ok {
		doc.CreatedAt = int64(ts)
	}
	if tags, ok := m["tags"].([]interface{}); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				doc.Tags = append(doc.Tags, s)
			}
		}
	}
	return doc
}

package docstore

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// Memory is an in-process document store that serves the same HTTP API the
// Client consumes. It backs cmd/docstore-mock and the client tests.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]domain.Document

	// Strict makes range queries compare with strict inequalities only.
	Strict bool
}

// NewMemory seeds a store with the given collections. Documents without an id
// get a random one, as the hosted store would assign.
func NewMemory(collections map[string][]domain.Document) *Memory {
	m := &Memory{collections: make(map[string][]domain.Document, len(collections))}
	for name, docs := range collections {
		seeded := slices.Clone(docs)
		for i := range seeded {
			if seeded[i].ID == "" {
				seeded[i].ID = uuid.NewString()
			}
		}
		m.collections[name] = seeded
	}
	return m
}

// Put inserts or replaces a document.
func (m *Memory) Put(collection string, doc domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	docs := m.collections[collection]
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			return
		}
	}
	m.collections[collection] = append(docs, doc)
}

// Len reports how many documents a collection holds.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func (m *Memory) list(collection string) []domain.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.collections[collection])
}

func (m *Memory) get(collection, id string) (domain.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.collections[collection] {
		if doc.ID == id {
			return doc, true
		}
	}
	return domain.Document{}, false
}

var errQueryCollection = errors.New("docstore: range queries are only supported on movies")

// query evaluates spec with catalog.RangeSpec semantics over the movies
// collection.
func (m *Memory) query(collection string, spec catalog.RangeSpec) ([]domain.Document, error) {
	if collection != domain.CollectionMovies {
		return nil, errQueryCollection
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if m.Strict {
		spec = spec.Strict()
	}

	docs := m.list(collection)
	byID := make(map[string]domain.Document, len(docs))
	movies := make([]domain.MovieRecord, len(docs))
	for i, doc := range docs {
		byID[doc.ID] = doc
		movies[i] = domain.MovieFromDocument(doc)
	}

	matched := spec.Apply(movies)
	out := make([]domain.Document, len(matched))
	for i, movie := range matched {
		out[i] = byID[movie.ID]
	}
	return out, nil
}

// Handler exposes the store over HTTP. An empty apiKey disables the key check.
func (m *Memory) Handler(apiKey string, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(requireAPIKey(apiKey))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/collections/{collection}/documents", func(w http.ResponseWriter, r *http.Request) {
		docs := m.list(chi.URLParam(r, "collection"))
		writeJSON(w, http.StatusOK, documentsPayload{Documents: nonNil(docs)})
	})
	r.Get("/collections/{collection}/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		doc, ok := m.get(chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	})
	r.Post("/collections/{collection}/query", func(w http.ResponseWriter, r *http.Request) {
		var spec catalog.RangeSpec
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			http.Error(w, "invalid range spec", http.StatusBadRequest)
			return
		}
		docs, err := m.query(chi.URLParam(r, "collection"), spec)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, documentsPayload{Documents: docs})
	})
	return r
}

func requireAPIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" && r.Header.Get("X-API-Key") != apiKey {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

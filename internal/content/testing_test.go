package content

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/content-query/internal/storage/remote"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

// fakeRemote serves remote collections from memory using the {status, data} envelope.
type fakeRemote struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	nextID      int
	failing     map[string]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		collections: map[string]map[string]map[string]any{},
		failing:     map[string]int{},
	}
}

func (f *fakeRemote) put(collection, id string, record map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.collections[collection] == nil {
		f.collections[collection] = map[string]map[string]any{}
	}
	record["id"] = id
	f.collections[collection][id] = record
}

func (f *fakeRemote) get(collection, id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[collection][id]
}

func (f *fakeRemote) remove(collection, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections[collection], id)
}

func write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": http.StatusText(status), "data": data})
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimRight(r.URL.Path, "/")
	collection, id := path, ""
	for c := range f.knownCollections() {
		if strings.HasPrefix(path, c+"/") {
			collection, id = c, strings.TrimPrefix(path, c+"/")
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if status, ok := f.failing[collection]; ok {
		write(w, status, nil)
		return
	}
	records := f.collections[collection]
	if records == nil {
		records = map[string]map[string]any{}
		f.collections[collection] = records
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		elements := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			elements = append(elements, rec)
		}
		write(w, http.StatusOK, map[string]any{"elements": elements, "count": len(elements)})
	case r.Method == http.MethodPost && id == "":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		newID := strconv.Itoa(f.nextID)
		body["id"] = newID
		records[newID] = body
		write(w, http.StatusCreated, map[string]any{"id": newID})
	case records[id] == nil:
		write(w, http.StatusNotFound, nil)
	case r.Method == http.MethodGet:
		write(w, http.StatusOK, records[id])
	case r.Method == http.MethodPut:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		for k, v := range body {
			records[id][k] = v
		}
		write(w, http.StatusOK, records[id])
	case r.Method == http.MethodDelete:
		delete(records, id)
		write(w, http.StatusOK, nil)
	default:
		write(w, http.StatusMethodNotAllowed, nil)
	}
}

func (f *fakeRemote) knownCollections() map[string]bool {
	return map[string]bool{"/v1/events": true, "/news": true}
}

type fixture struct {
	service *Service
	store   *in_mem.Store
	remote  *fakeRemote
	types   *schema.Registry
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	reg, err := schema.LoadFile("../schema/testdata/contenttypes.yml")
	require.NoError(t, err)

	fake := newFakeRemote()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(remote.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	clock := func() time.Time { return fixedNow }
	store := in_mem.NewStore(in_mem.WithClock(clock))

	opts = append([]Option{
		WithRelational(Backend{Executor: store, Storer: store, Enricher: store}),
		WithRemote(Backend{Executor: remote.NewExecutor(client), Storer: remote.NewStorer(client)}),
		WithRand(rand.New(rand.NewSource(1))),
		WithClock(clock),
	}, opts...)

	svc := NewService(reg, query.NewDecoder(reg, query.WithClock(clock)), opts...)
	return &fixture{service: svc, store: store, remote: fake, types: reg}
}

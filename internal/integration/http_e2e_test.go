//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	httpserver "elitestay/internal/adapters/http_server"
	"elitestay/internal/adapters/places"
	redisad "elitestay/internal/adapters/redis"
	"elitestay/internal/adapters/tokens"
	"elitestay/internal/app"
	"elitestay/internal/domain"
	mysqlrepo "elitestay/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "../../migrations/mysql"
}

func startMySQL(t *testing.T) (*sql.DB, string) {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=elitestay"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/elitestay?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	pool.MaxWait = 2 * time.Minute
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := mysqlrepo.Migrate(dsn, migrationsDir(), "up"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, dsn
}

// fakeGoogle answers the two Places Web Service endpoints the client uses.
func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/place/autocomplete/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","predictions":[{"place_id":"p-mumbai","description":"Mumbai, Maharashtra, India"}]}`))
	})
	mux.HandleFunc("/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("place_id") != "p-mumbai" {
			_, _ = w.Write([]byte(`{"status":"NOT_FOUND"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"Mumbai","geometry":{"location":{"lat":19.076,"lng":72.8777}}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()
	var rd bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&rd).Encode(body)
	}
	req, _ := http.NewRequest(method, url, &rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SearchShortlistBook(t *testing.T) {
	db, _ := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	for _, p := range []domain.Property{
		{ID: "a", Name: "Sea View", Location: "Mumbai, Maharashtra", Price: "4500"},
		{ID: "b", Name: "Hill Stay", Location: "Pune", Price: "3000"},
	} {
		if err := repo.UpsertProperty(ctx, p); err != nil {
			t.Fatalf("UpsertProperty: %v", err)
		}
	}

	mr := miniredis.RunT(t)
	rc, err := redisad.Connect(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer rc.Close()

	pc, err := places.New(fakeGoogle(t).URL, "test-key", 100)
	if err != nil {
		t.Fatalf("places: %v", err)
	}
	iss, _ := tokens.NewIssuer("e2e-secret", time.Hour)

	placeSvc := app.NewPlaceSuggestionService(pc, redisad.NewCache(rc), 60)
	registry := app.NewSessionRegistry(placeSvc)
	props := app.NewPropertyRepository(repo, 5*time.Second)
	s := httpserver.New([]string{"*"})
	s.MountHandlers(&httpserver.Handlers{
		Auth:     app.NewAuthService(repo, redisad.NewSessions(rc), iss, registry, 2*time.Minute),
		Repo:     props,
		Search:   app.NewSearchService(props, placeSvc),
		Bookings: app.NewBookingRecorder(repo, nil, 5*time.Second),
		Sessions: registry,
		Profiles: app.NewProfileService(),
	})
	ts := httptest.NewServer(s.Mux())
	defer ts.Close()

	creds := map[string]string{"email": "guest@example.com", "password": "secret1"}
	if code := call(t, "POST", ts.URL+"/v1/auth/signup", "", creds, nil); code != http.StatusCreated {
		t.Fatalf("signup %d", code)
	}
	var grant struct {
		Token string `json:"token"`
	}
	if code := call(t, "POST", ts.URL+"/v1/auth/signin", "", creds, &grant); code != http.StatusOK {
		t.Fatalf("signin %d", code)
	}

	var sug struct {
		Suggestions []domain.PlaceSuggestion `json:"suggestions"`
	}
	if code := call(t, "GET", ts.URL+"/v1/places/suggest?q=Mumb", grant.Token, nil, &sug); code != http.StatusOK || len(sug.Suggestions) != 1 {
		t.Fatalf("suggest %d %+v", code, sug)
	}

	var matches struct {
		Place      domain.Place      `json:"place"`
		Properties []domain.Property `json:"properties"`
	}
	url := ts.URL + "/v1/places/" + sug.Suggestions[0].PlaceID + "/properties"
	if code := call(t, "GET", url, grant.Token, nil, &matches); code != http.StatusOK {
		t.Fatalf("select place %d", code)
	}
	if matches.Place.Coordinates != "lat/lng: (19.076,72.8777)" || len(matches.Properties) != 1 || matches.Properties[0].ID != "a" {
		t.Fatalf("unexpected matches: %+v", matches)
	}

	if code := call(t, "PUT", ts.URL+"/v1/shortlist/a", grant.Token, nil, nil); code != http.StatusOK {
		t.Fatalf("shortlist %d", code)
	}
	var snap app.DetailsSnapshot
	if code := call(t, "POST", ts.URL+"/v1/properties/a/bookings", grant.Token, nil, &snap); code != http.StatusCreated {
		t.Fatalf("book %d", code)
	}
	if snap.Booking == nil || !snap.Shortlisted {
		t.Fatalf("unexpected booking snapshot: %+v", snap)
	}

	var hist []domain.BookingRecord
	if code := call(t, "GET", ts.URL+"/v1/bookings", grant.Token, nil, &hist); code != http.StatusOK || len(hist) != 1 {
		t.Fatalf("history %d %+v", code, hist)
	}
	if hist[0].ID != snap.Booking.ID || hist[0].Property.Name != "Sea View" {
		t.Fatalf("unexpected history: %+v", hist)
	}
}
